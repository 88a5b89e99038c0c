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

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Complete asks the completion backend for a single-turn answer.
func (c *Client) Complete(ctx context.Context, model domain.Model, prompt string) (string, error) {
	jsonBody, err := json.Marshal(completionRequest{Model: string(model), Prompt: prompt})
	if err != nil {
		return "", &domain.UpstreamError{Backend: "completion", Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.completionBase+"/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", &domain.UpstreamError{Backend: "completion", Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.completionKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.completionKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Backend: "completion", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.UpstreamError{
			Backend: "completion",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", string(body)),
		}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &domain.UpstreamError{Backend: "completion", Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}

	return out.Text, nil
}
