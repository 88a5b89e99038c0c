package domain

// Attachment is a file the author uploaded with the message.
type Attachment struct {
	URL         string
	ContentType string
}

// InboundMessage is one message event from the chat platform. It is
// ephemeral: each message is a stateless single-turn request.
type InboundMessage struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
}

// FirstImage returns the first attachment declaring an image content
// type, or nil. Only the first image on a message is considered.
func (m InboundMessage) FirstImage() *Attachment {
	for i := range m.Attachments {
		if hasImageType(m.Attachments[i].ContentType) {
			return &m.Attachments[i]
		}
	}
	return nil
}

func hasImageType(ct string) bool {
	return len(ct) >= 6 && ct[:6] == "image/"
}
