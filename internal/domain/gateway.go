package domain

import "context"

// Gateway is the single seam to the external model-inference backends.
// All three operations are independently failable and perform no retry;
// the caller decides what a failure means.
type Gateway interface {
	// Complete asks the given text model for a completion of prompt.
	Complete(ctx context.Context, model Model, prompt string) (string, error)
	// Caption describes the given image bytes in one sentence.
	Caption(ctx context.Context, image []byte) (string, error)
	// Generate renders an image for the prompt and returns PNG bytes.
	Generate(ctx context.Context, model ImageModel, prompt string) ([]byte, error)
}
