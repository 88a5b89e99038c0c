// Package channel adapts the Discord transport to the bot's Platform
// interface and feeds Discord events into the router and lifecycle.
package channel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"lexol/internal/bot"
	"lexol/internal/domain"

	"github.com/bwmarrin/discordgo"
)

const presenceInterval = 5 * time.Minute

// Discord connects the bot to Discord and implements domain.Platform.
type Discord struct {
	token     string
	guildID   string
	session   *discordgo.Session
	router    *bot.Router
	lifecycle *bot.Lifecycle
	filename  string
	logger    *slog.Logger
}

// DiscordConfig configures the Discord adapter.
type DiscordConfig struct {
	Token string
	// GuildID restricts command registration to one guild when set.
	GuildID       string
	ReplyFilename string
	Logger        *slog.Logger
}

// NewDiscord creates a new Discord adapter. The router and lifecycle are
// attached later via Bind, because they need the adapter as their
// Platform first.
func NewDiscord(cfg DiscordConfig) *Discord {
	filename := cfg.ReplyFilename
	if filename == "" {
		filename = "message.txt"
	}
	return &Discord{
		token:    cfg.Token,
		guildID:  cfg.GuildID,
		filename: filename,
		logger:   cfg.Logger,
	}
}

// Bind attaches the message router and the binding lifecycle.
func (d *Discord) Bind(router *bot.Router, lifecycle *bot.Lifecycle) {
	d.router = router
	d.lifecycle = lifecycle
}

// Start connects to Discord using a bot token and begins listening.
// Blocks until ctx is cancelled.
func (d *Discord) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	d.session = session

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		msg := inboundFromDiscord(m, s.State.User.ID)

		// Each message runs its own pipeline; ordering between messages is
		// not guaranteed.
		go func() {
			if err := d.router.HandleMessage(ctx, msg); err != nil {
				d.logger.Error("message pipeline failed", "guild", msg.GuildID, "err", err)
			}
		}()
	})

	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		go d.handleCommand(ctx, i)
	})

	session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		// Unavailable means an outage, not a removal.
		if g.Unavailable {
			return
		}
		d.lifecycle.HandleGuildRemoved(ctx, g.ID)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}

	d.logger.Info("discord bot connected", "user", session.State.User.Username)

	d.registerSlashCommands()

	go d.presenceLoop(ctx)

	<-ctx.Done()
	d.logger.Info("discord bot disconnecting")
	return session.Close()
}

// presenceLoop refreshes the "Watching N servers" status.
func (d *Discord) presenceLoop(ctx context.Context) {
	ticker := time.NewTicker(presenceInterval)
	defer ticker.Stop()

	for {
		d.updatePresence()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Discord) updatePresence() {
	n := len(d.session.State.Guilds)
	if err := d.session.UpdateWatchStatus(0, fmt.Sprintf("%d servers", n)); err != nil {
		d.logger.Warn("presence update failed", "err", err)
	}
}

// inboundFromDiscord converts a Discord message event into the
// platform-neutral shape the router consumes.
func inboundFromDiscord(m *discordgo.MessageCreate, botUserID string) domain.InboundMessage {
	msg := domain.InboundMessage{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot || m.Author.ID == botUserID,
		Content:     m.Content,
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			URL:         a.URL,
			ContentType: a.ContentType,
		})
	}
	return msg
}

// --- domain.Platform implementation ---

// noMentions suppresses every ping, including the replied-to author.
var noMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

func (d *Discord) Reply(ctx context.Context, ref domain.ReplyRef, content string) error {
	_, err := d.session.ChannelMessageSendComplex(ref.ChannelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       messageRef(ref),
		AllowedMentions: noMentions,
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) ReplyFile(ctx context.Context, ref domain.ReplyRef, filename string, r io.Reader) error {
	_, err := d.session.ChannelMessageSendComplex(ref.ChannelID, &discordgo.MessageSend{
		Files:           []*discordgo.File{{Name: filename, ContentType: "text/plain; charset=utf-8", Reader: r}},
		Reference:       messageRef(ref),
		AllowedMentions: noMentions,
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) SetSlowmode(ctx context.Context, channelID string, seconds int) error {
	_, err := d.session.ChannelEdit(channelID, &discordgo.ChannelEdit{
		RateLimitPerUser: &seconds,
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) Typing(ctx context.Context, channelID string) error {
	return d.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func (d *Discord) CreateTextChannel(ctx context.Context, guildID, name string, slowmodeSeconds int) (string, error) {
	ch, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:             name,
		Type:             discordgo.ChannelTypeGuildText,
		RateLimitPerUser: slowmodeSeconds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func messageRef(ref domain.ReplyRef) *discordgo.MessageReference {
	return &discordgo.MessageReference{
		MessageID: ref.MessageID,
		ChannelID: ref.ChannelID,
		GuildID:   ref.GuildID,
	}
}
