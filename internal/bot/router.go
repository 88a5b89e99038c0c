// Package bot holds the per-message pipeline and the binding lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lexol/internal/domain"
	"lexol/internal/metrics"
	"lexol/internal/sanitize"

	"github.com/google/uuid"
)

// AttachmentFetcher downloads attachment bytes. Satisfied by *Fetcher;
// tests inject a fake.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RouterConfig carries the platform constraints the pipeline needs.
type RouterConfig struct {
	MaxInlineLen    int
	SlowmodeSeconds int
	ReplyFilename   string
	// TypingInterval is how often the typing indicator is re-triggered
	// while a pipeline runs. Discord expires the indicator after roughly
	// ten seconds, so it must be refreshed below that.
	TypingInterval time.Duration
}

// Router runs the message pipeline: binding lookup, prompt construction,
// completion, sanitization, size-routed delivery. Each message is handled
// independently; there is no per-channel queue.
type Router struct {
	store    domain.BindingStore
	gateway  domain.Gateway
	platform domain.Platform
	fetcher  AttachmentFetcher
	cfg      RouterConfig
	logger   *slog.Logger

	handled  *metrics.Counter
	ignored  *metrics.Counter
	inline   *metrics.Counter
	asFile   *metrics.Counter
	failed   *metrics.Counter
	captions *metrics.Counter
}

func NewRouter(store domain.BindingStore, gw domain.Gateway, platform domain.Platform, fetcher AttachmentFetcher, cfg RouterConfig, logger *slog.Logger) *Router {
	if cfg.MaxInlineLen <= 0 {
		cfg.MaxInlineLen = 2000
	}
	if cfg.ReplyFilename == "" {
		cfg.ReplyFilename = "message.txt"
	}
	if cfg.TypingInterval <= 0 {
		cfg.TypingInterval = 8 * time.Second
	}
	return &Router{
		store:    store,
		gateway:  gw,
		platform: platform,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
		handled:  metrics.Collector.Counter("lexol_messages_handled_total", "Messages that entered the pipeline"),
		ignored:  metrics.Collector.Counter("lexol_messages_ignored_total", "Messages ignored (unbound guild, wrong channel, or bot author)"),
		inline:   metrics.Collector.Counter("lexol_replies_inline_total", "Replies delivered as message body"),
		asFile:   metrics.Collector.Counter("lexol_replies_file_total", "Replies delivered as file attachment"),
		failed:   metrics.Collector.Counter("lexol_pipeline_errors_total", "Pipelines aborted by an upstream failure"),
		captions: metrics.Collector.Counter("lexol_captions_total", "Image attachments captioned"),
	}
}

// HandleMessage runs one message through the pipeline. Failures are
// reported back into the channel; the returned error is for logging only
// and never crashes the caller.
func (r *Router) HandleMessage(ctx context.Context, msg domain.InboundMessage) error {
	// The bot must never answer itself; replying to our own replies would
	// loop forever.
	if msg.AuthorIsBot {
		r.ignored.Inc()
		return nil
	}

	binding, err := r.store.Get(ctx, msg.GuildID)
	if err != nil {
		return fmt.Errorf("binding lookup: %w", err)
	}
	if binding == nil || binding.ChannelID != msg.ChannelID {
		r.ignored.Inc()
		return nil
	}

	trace := uuid.NewString()
	log := r.logger.With("trace", trace, "guild", msg.GuildID, "channel", msg.ChannelID)
	log.Info("chat message accepted", "model", binding.Model, "attachments", len(msg.Attachments))
	r.handled.Inc()

	ref := domain.ReplyRef{GuildID: msg.GuildID, ChannelID: msg.ChannelID, MessageID: msg.MessageID}

	// Keep the channel throttled even if someone cleared slowmode by hand.
	if err := r.platform.SetSlowmode(ctx, binding.ChannelID, r.cfg.SlowmodeSeconds); err != nil {
		log.Warn("cannot reassert slowmode", "err", err)
	}
	// The indicator expires on its own, so keep it alive for as long as
	// the caption and completion calls run.
	if err := r.platform.Typing(ctx, binding.ChannelID); err != nil {
		log.Debug("typing indicator failed", "err", err)
	}
	stopTyping := r.keepTyping(ctx, binding.ChannelID)
	defer stopTyping()

	prompt, err := r.buildPrompt(ctx, msg)
	if err != nil {
		r.failed.Inc()
		log.Error("prompt construction failed", "err", err)
		r.notifyError(ctx, ref, err)
		return err
	}

	reply, err := r.gateway.Complete(ctx, binding.Model, prompt)
	if err != nil {
		r.failed.Inc()
		log.Error("completion failed", "err", err)
		r.notifyError(ctx, ref, err)
		return err
	}

	safe := sanitize.Sanitize(reply)
	switch sanitize.Mode(safe, r.cfg.MaxInlineLen) {
	case sanitize.Inline:
		if err := r.platform.Reply(ctx, ref, safe); err != nil {
			log.Error("reply failed", "err", err)
			return err
		}
		r.inline.Inc()
	case sanitize.File:
		if err := r.platform.ReplyFile(ctx, ref, r.cfg.ReplyFilename, strings.NewReader(safe)); err != nil {
			log.Error("file reply failed", "err", err)
			return err
		}
		r.asFile.Inc()
	}

	log.Info("reply delivered", "bytes", len(safe))
	return nil
}

// keepTyping re-triggers the typing indicator every TypingInterval until
// the returned stop function is called.
func (r *Router) keepTyping(ctx context.Context, channelID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(r.cfg.TypingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.platform.Typing(ctx, channelID); err != nil {
					r.logger.Debug("typing indicator failed", "err", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

// buildPrompt returns the message text verbatim, or the caption-augmented
// prompt when the message carries an image. A caption failure aborts the
// pipeline: the user attached the image on purpose, so silently answering
// without it would be worse than an error.
func (r *Router) buildPrompt(ctx context.Context, msg domain.InboundMessage) (string, error) {
	img := msg.FirstImage()
	if img == nil {
		return msg.Content, nil
	}

	data, err := r.fetcher.Fetch(ctx, img.URL)
	if err != nil {
		return "", err
	}

	caption, err := r.gateway.Caption(ctx, data)
	if err != nil {
		return "", err
	}
	r.captions.Inc()

	return fmt.Sprintf("Image detected, description: %s. Prompt: %s", caption, msg.Content), nil
}

// notifyError posts a short notice in-channel so no failure leaves the
// user without any response. Best effort.
func (r *Router) notifyError(ctx context.Context, ref domain.ReplyRef, cause error) {
	notice := "**Error:** " + UserMessage(cause)
	if err := r.platform.Reply(ctx, ref, notice); err != nil {
		r.logger.Warn("cannot deliver error notice", "channel", ref.ChannelID, "err", err)
	}
}

// UserMessage maps an internal error to the short text users see.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return "something went wrong."
	case errors.Is(err, domain.ErrInvalidModel):
		return fmt.Sprintf("model not found! Choose a model between `%s`.", modelList())
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "I could not read that image format."
	case errors.Is(err, domain.ErrAlreadyBound):
		return "the chatbot is already set up. Use the `/reset-chatbot` command to fix this error."
	case errors.Is(err, domain.ErrNotBound):
		return "the chatbot is not set up. Use the `/setup-chatbot` command to fix this error."
	default:
		return "the model backend is unavailable, try again later."
	}
}

func modelList() string {
	names := make([]string, 0, len(domain.TextModels()))
	for _, m := range domain.TextModels() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}
