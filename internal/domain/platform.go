package domain

import (
	"context"
	"io"
)

// ReplyRef points a reply at the message that triggered it. Replies are
// always non-pinging: the referenced author must not be mentioned.
type ReplyRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// Platform is the chat-platform surface the bot depends on. Only the
// success or failure of each operation matters to the core; payload
// shapes stay inside the adapter.
type Platform interface {
	// Reply sends content in-channel as a non-pinging reply.
	Reply(ctx context.Context, ref ReplyRef, content string) error
	// ReplyFile sends a file attachment as a non-pinging reply.
	ReplyFile(ctx context.Context, ref ReplyRef, filename string, r io.Reader) error
	// SetSlowmode (re)asserts the channel's slow-mode delay in seconds.
	// Idempotent.
	SetSlowmode(ctx context.Context, channelID string, seconds int) error
	// Typing shows a typing indicator in the channel. Best effort.
	Typing(ctx context.Context, channelID string) error
	// CreateTextChannel creates a text channel in the guild with the given
	// slow-mode delay and returns its id.
	CreateTextChannel(ctx context.Context, guildID, name string, slowmodeSeconds int) (string, error)
	// DeleteChannel removes a channel.
	DeleteChannel(ctx context.Context, channelID string) error
}
