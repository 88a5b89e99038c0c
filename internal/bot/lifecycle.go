package bot

import (
	"context"
	"fmt"
	"log/slog"

	"lexol/internal/domain"
)

// LifecycleConfig names the channel that setup creates and the slowmode
// it starts with.
type LifecycleConfig struct {
	ChannelName     string
	SlowmodeSeconds int
}

// Lifecycle creates, resets and tears down guild bindings.
type Lifecycle struct {
	store    domain.BindingStore
	platform domain.Platform
	cfg      LifecycleConfig
	logger   *slog.Logger
}

func NewLifecycle(store domain.BindingStore, platform domain.Platform, cfg LifecycleConfig, logger *slog.Logger) *Lifecycle {
	if cfg.ChannelName == "" {
		cfg.ChannelName = "freegpt-chat"
	}
	return &Lifecycle{store: store, platform: platform, cfg: cfg, logger: logger}
}

// Setup binds the guild to a freshly created chat channel and the given
// model. Returns the new channel's id.
//
// Channel creation happens before the store write and the two are not
// atomic: if the write fails, the channel is orphaned. That case comes
// back as an OrphanResourceError and is logged for an operator; no
// automatic rollback is attempted.
func (l *Lifecycle) Setup(ctx context.Context, guildID, model string) (string, error) {
	m, err := domain.ParseModel(model)
	if err != nil {
		return "", err
	}

	existing, err := l.store.Get(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("binding lookup: %w", err)
	}
	if existing != nil {
		return "", domain.ErrAlreadyBound
	}

	channelID, err := l.platform.CreateTextChannel(ctx, guildID, l.cfg.ChannelName, l.cfg.SlowmodeSeconds)
	if err != nil {
		return "", fmt.Errorf("create channel: %w", err)
	}

	err = l.store.Create(ctx, domain.Binding{GuildID: guildID, ChannelID: channelID, Model: m})
	if err != nil {
		// The pre-check passed but the insert failed: either a concurrent
		// setup won the race or the store broke. Either way the channel we
		// just created has no binding.
		orphan := &domain.OrphanResourceError{GuildID: guildID, ChannelID: channelID, Err: err}
		l.logger.Error("orphaned channel needs manual cleanup", "guild", guildID, "channel", channelID, "err", err)
		return "", orphan
	}

	l.logger.Info("chatbot set up", "guild", guildID, "channel", channelID, "model", m)
	return channelID, nil
}

// Reset deletes the bound channel and the binding.
func (l *Lifecycle) Reset(ctx context.Context, guildID string) error {
	binding, err := l.store.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("binding lookup: %w", err)
	}
	if binding == nil {
		return domain.ErrNotBound
	}

	// A channel someone already deleted by hand must not wedge the reset;
	// the binding row is what actually matters.
	if err := l.platform.DeleteChannel(ctx, binding.ChannelID); err != nil {
		l.logger.Warn("cannot delete bound channel, removing binding anyway", "guild", guildID, "channel", binding.ChannelID, "err", err)
	}

	if err := l.store.Delete(ctx, guildID); err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}

	l.logger.Info("chatbot reset", "guild", guildID)
	return nil
}

// HandleGuildRemoved drops any binding for a guild the bot was removed
// from. Idempotent; never reports an error to the caller.
func (l *Lifecycle) HandleGuildRemoved(ctx context.Context, guildID string) {
	if err := l.store.Delete(ctx, guildID); err != nil {
		l.logger.Error("cleanup after guild removal failed", "guild", guildID, "err", err)
		return
	}
	l.logger.Info("guild removed, binding cleaned up", "guild", guildID)
}
