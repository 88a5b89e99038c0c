package channel

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"lexol/internal/bot"
	"lexol/internal/domain"
	"lexol/internal/sanitize"

	"github.com/bwmarrin/discordgo"
)

const (
	colorHelp  = 0x00FFFF
	colorError = 0xE74C3C
)

func (d *Discord) registerSlashCommands() {
	manageChannels := int64(discordgo.PermissionManageChannels)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "setup-chatbot",
			Description:              "Setup the chatbot.",
			DefaultMemberPermissions: &manageChannels,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "Model to use.",
					Required:    true,
					Choices:     textModelChoices(),
				},
			},
		},
		{
			Name:                     "reset-chatbot",
			Description:              "Reset the chatbot.",
			DefaultMemberPermissions: &manageChannels,
		},
		{
			Name:        "ask",
			Description: "Ask a model a question.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "Model to use.",
					Required:    true,
					Choices:     textModelChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "Your prompt.",
					Required:    true,
				},
			},
		},
		{
			Name:        "imagine",
			Description: "Generate an image based on a prompt.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "Model to use.",
					Required:    true,
					Choices:     imageModelChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "Your prompt.",
					Required:    true,
				},
			},
		},
		{
			Name:        "help",
			Description: "Get help.",
		},
	}

	guildID := d.guildID // empty = global commands
	for _, cmd := range commands {
		if _, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, guildID, cmd); err != nil {
			d.logger.Warn("failed to register slash command", "command", cmd.Name, "err", err)
		}
	}
}

func textModelChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.TextModels()))
	for _, m := range domain.TextModels() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: m.String(), Value: m.String()})
	}
	return choices
}

func imageModelChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.ImageModels()))
	for _, m := range domain.ImageModels() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: m.String(), Value: m.String()})
	}
	return choices
}

func (d *Discord) handleCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	// Acknowledge first; every branch below may hit the network.
	err := d.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		d.logger.Error("interaction ack failed", "err", err)
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)

	switch data.Name {
	case "setup-chatbot":
		d.handleSetup(ctx, i, opts["model"])
	case "reset-chatbot":
		d.handleReset(ctx, i)
	case "ask":
		d.handleAsk(ctx, i, opts["model"], opts["prompt"])
	case "imagine":
		d.handleImagine(ctx, i, opts["model"], opts["prompt"])
	case "help":
		d.handleHelp(i)
	default:
		d.followupError(i, fmt.Errorf("unknown command %q", data.Name))
	}
}

func (d *Discord) handleSetup(ctx context.Context, i *discordgo.InteractionCreate, model string) {
	channelID, err := d.lifecycle.Setup(ctx, i.GuildID, model)
	if err != nil {
		d.followupError(i, err)
		return
	}
	d.followupText(i, fmt.Sprintf("**Success:** The chatbot has been set up. The channel is <#%s>.", channelID))
}

func (d *Discord) handleReset(ctx context.Context, i *discordgo.InteractionCreate) {
	if err := d.lifecycle.Reset(ctx, i.GuildID); err != nil {
		d.followupError(i, err)
		return
	}
	d.followupText(i, "**Success:** The chatbot has been reset.")
}

func (d *Discord) handleAsk(ctx context.Context, i *discordgo.InteractionCreate, model, prompt string) {
	text, mode, err := d.router.Ask(ctx, model, prompt)
	if err != nil {
		d.followupError(i, err)
		return
	}

	params := &discordgo.WebhookParams{AllowedMentions: noMentions}
	if mode == sanitize.File {
		params.Files = []*discordgo.File{{
			Name:        d.filename,
			ContentType: "text/plain; charset=utf-8",
			Reader:      strings.NewReader(text),
		}}
	} else {
		params.Content = text
	}

	if _, err := d.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		d.logger.Error("ask followup failed", "err", err)
	}
}

func (d *Discord) handleImagine(ctx context.Context, i *discordgo.InteractionCreate, model, prompt string) {
	img, err := d.router.Imagine(ctx, model, prompt)
	if err != nil {
		d.followupError(i, err)
		return
	}

	// SPOILER_ prefix makes Discord blur the attachment.
	params := &discordgo.WebhookParams{
		Content: "**Generated image might be NSFW!** Click the spoiler at your own risk.",
		Files: []*discordgo.File{{
			Name:        "SPOILER_image.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(img),
		}},
		AllowedMentions: noMentions,
	}
	if _, err := d.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		d.logger.Error("imagine followup failed", "err", err)
	}
}

func (d *Discord) handleHelp(i *discordgo.InteractionCreate) {
	embed := &discordgo.MessageEmbed{
		Title: "Help Menu",
		Color: colorHelp,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Models:",
				Value: fmt.Sprintf("**Text Completion:** `%s`\n**Image Generation:** `%s`",
					joinTextModels(), joinImageModels()),
			},
			{
				Name:  "Chatbot",
				Value: "Setup the chatbot: `/setup-chatbot`.\nReset the chatbot: `/reset-chatbot`.",
			},
		},
	}
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := d.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		d.logger.Error("help followup failed", "err", err)
	}
}

func (d *Discord) followupText(i *discordgo.InteractionCreate, content string) {
	params := &discordgo.WebhookParams{Content: content, AllowedMentions: noMentions}
	if _, err := d.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		d.logger.Error("followup failed", "err", err)
	}
}

func (d *Discord) followupError(i *discordgo.InteractionCreate, cause error) {
	embed := &discordgo.MessageEmbed{
		Description: "**Error:** " + bot.UserMessage(cause),
		Color:       colorError,
	}
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := d.session.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		d.logger.Error("error followup failed", "err", err)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	m := make(map[string]string, len(options))
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			m[opt.Name] = opt.StringValue()
		}
	}
	return m
}

func joinTextModels() string {
	names := make([]string, 0, len(domain.TextModels()))
	for _, m := range domain.TextModels() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

func joinImageModels() string {
	names := make([]string, 0, len(domain.ImageModels()))
	for _, m := range domain.ImageModels() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}
