package bot

import (
	"context"

	"lexol/internal/domain"
	"lexol/internal/sanitize"
)

// Ask backs the /ask command: one stateless completion with the same
// sanitize-and-size-route treatment the chat pipeline applies.
func (r *Router) Ask(ctx context.Context, model, prompt string) (string, sanitize.DeliveryMode, error) {
	m, err := domain.ParseModel(model)
	if err != nil {
		return "", sanitize.Inline, err
	}

	reply, err := r.gateway.Complete(ctx, m, prompt)
	if err != nil {
		r.failed.Inc()
		return "", sanitize.Inline, err
	}

	safe := sanitize.Sanitize(reply)
	return safe, sanitize.Mode(safe, r.cfg.MaxInlineLen), nil
}

// Imagine backs the /imagine command: render an image for the prompt.
func (r *Router) Imagine(ctx context.Context, model, prompt string) ([]byte, error) {
	m, err := domain.ParseImageModel(model)
	if err != nil {
		return nil, err
	}

	img, err := r.gateway.Generate(ctx, m, prompt)
	if err != nil {
		r.failed.Inc()
		return nil, err
	}
	return img, nil
}
