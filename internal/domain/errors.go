package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected user-facing conditions. These are caught at
// the command boundary and turned into a short message, never a crash.
var (
	ErrAlreadyBound      = errors.New("chatbot already set up for this guild")
	ErrNotBound          = errors.New("chatbot not set up for this guild")
	ErrInvalidModel      = errors.New("unknown model")
	ErrUnsupportedFormat = errors.New("captioning backend rejected the image")
)

// UpstreamError wraps a failure from a model backend: network error,
// non-success status, or a payload that did not decode.
type UpstreamError struct {
	Backend string // "completion" | "caption" | "image"
	Status  int    // HTTP status, 0 when the request never completed
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s backend returned %d: %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// OrphanResourceError reports a channel that was created for a binding
// whose store write then failed. No rollback is attempted; an operator
// has to delete the channel by hand.
type OrphanResourceError struct {
	GuildID   string
	ChannelID string
	Err       error
}

func (e *OrphanResourceError) Error() string {
	return fmt.Sprintf("binding write failed for guild %s, channel %s is orphaned: %v", e.GuildID, e.ChannelID, e.Err)
}

func (e *OrphanResourceError) Unwrap() error { return e.Err }
