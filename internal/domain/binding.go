package domain

import (
	"context"
	"time"
)

// Binding ties a guild to its exclusive chat channel and the model that
// answers there. At most one binding exists per guild; bindings are
// replaced or deleted whole, never partially updated.
type Binding struct {
	GuildID   string
	ChannelID string
	Model     Model
	CreatedAt time.Time
}

// BindingStore is the durable guild → (channel, model) mapping.
type BindingStore interface {
	// Get returns the binding for the guild, or nil when none exists.
	Get(ctx context.Context, guildID string) (*Binding, error)
	// Create inserts a new binding. It fails with ErrAlreadyBound when the
	// guild already has one; the insert itself must be atomic so two
	// concurrent creators cannot both succeed.
	Create(ctx context.Context, b Binding) error
	// Delete removes the guild's binding. Deleting an absent binding is a
	// no-op, not an error.
	Delete(ctx context.Context, guildID string) error
}
