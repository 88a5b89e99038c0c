// Package gateway talks to the external model-inference backends: text
// completion, image captioning, and image generation. Every call is a
// single attempt; retry policy belongs to the caller.
package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"lexol/internal/config"
)

// Client implements domain.Gateway over three HTTP backends.
type Client struct {
	completionBase string
	completionKey  string
	captionURL     string
	captionKey     string
	captionTimeout time.Duration
	imageBase      string
	imageKey       string
	http           *http.Client
	logger         *slog.Logger
}

func NewClient(cfg config.BackendsConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Caption.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		completionBase: cfg.Completion.APIBase,
		completionKey:  cfg.Completion.APIKey,
		captionURL:     cfg.Caption.Endpoint,
		captionKey:     cfg.Caption.APIKey,
		captionTimeout: timeout,
		imageBase:      cfg.Image.APIBase,
		imageKey:       cfg.Image.APIKey,
		http:           SharedHTTPClient(0),
		logger:         logger,
	}
}
