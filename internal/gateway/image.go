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

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// Generate renders an image for the prompt. The backend answers with raw
// PNG bytes.
func (c *Client) Generate(ctx context.Context, model domain.ImageModel, prompt string) ([]byte, error) {
	jsonBody, err := json.Marshal(generationRequest{Model: string(model), Prompt: prompt})
	if err != nil {
		return nil, &domain.UpstreamError{Backend: "image", Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.imageBase+"/generations", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &domain.UpstreamError{Backend: "image", Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.imageKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.imageKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Backend: "image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamError{
			Backend: "image",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", string(body)),
		}
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Backend: "image", Status: resp.StatusCode, Err: err}
	}
	if len(img) == 0 {
		return nil, &domain.UpstreamError{Backend: "image", Status: resp.StatusCode, Err: fmt.Errorf("empty image payload")}
	}
	return img, nil
}
