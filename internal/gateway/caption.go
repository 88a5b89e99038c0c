package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"lexol/internal/domain"
)

type captionResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Caption sends raw image bytes to the captioning backend and returns its
// one-line description. The call runs under the configured hard timeout
// (20s by default) regardless of the caller's context.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.captionTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.captionURL, bytes.NewReader(image))
	if err != nil {
		return "", &domain.UpstreamError{Backend: "caption", Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.captionKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Backend: "caption", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnsupportedMediaType:
		return "", fmt.Errorf("%w (status %d)", domain.ErrUnsupportedFormat, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.UpstreamError{
			Backend: "caption",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", string(body)),
		}
	}

	var out captionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.UpstreamError{Backend: "caption", Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(out) == 0 {
		return "", &domain.UpstreamError{Backend: "caption", Status: resp.StatusCode, Err: fmt.Errorf("empty caption payload")}
	}

	return out[0].GeneratedText, nil
}
