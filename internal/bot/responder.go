package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for replying to a command.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Defer acknowledges the command for handlers that need time before replying.
	Defer() error

	// Respond sends the reply embed.
	Respond(embed *discordgo.MessageEmbed) error
}

// InteractionResponder replies to a slash command interaction.
type InteractionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	deferred    bool
}

// NewInteractionResponder creates a new InteractionResponder.
func NewInteractionResponder(s *discordgo.Session, i *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{
		session:     s,
		interaction: i,
	}
}

// Defer sends a deferred "thinking" response; Respond then edits it.
func (r *InteractionResponder) Defer() error {
	if r.deferred {
		return nil
	}
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}
	r.deferred = true
	return nil
}

// Respond sends the embed via the Discord interaction API.
func (r *InteractionResponder) Respond(embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}

	if r.deferred {
		_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
			Embeds: &embeds,
		})
		return err
	}

	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embeds,
		},
	})
}

// MessageResponder replies to a prefixed text command in its channel.
type MessageResponder struct {
	session *discordgo.Session
	message *discordgo.Message
}

// NewMessageResponder creates a new MessageResponder.
func NewMessageResponder(s *discordgo.Session, m *discordgo.Message) *MessageResponder {
	return &MessageResponder{
		session: s,
		message: m,
	}
}

// Defer shows the typing indicator in the channel.
func (r *MessageResponder) Defer() error {
	return r.session.ChannelTyping(r.message.ChannelID)
}

// Respond sends the embed as a reply to the original message.
func (r *MessageResponder) Respond(embed *discordgo.MessageEmbed) error {
	_, err := r.session.ChannelMessageSendComplex(r.message.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: r.message.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	})
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	Deferred bool
	Embeds   []*discordgo.MessageEmbed
	Err      error
	DeferErr error
}

// Defer records that the command was deferred.
func (m *MockResponder) Defer() error {
	m.Deferred = true
	return m.DeferErr
}

// Respond records the embed for testing.
func (m *MockResponder) Respond(embed *discordgo.MessageEmbed) error {
	m.Embeds = append(m.Embeds, embed)
	return m.Err
}

// LastEmbed returns the most recent embed, or nil if none was sent.
func (m *MockResponder) LastEmbed() *discordgo.MessageEmbed {
	if len(m.Embeds) == 0 {
		return nil
	}
	return m.Embeds[len(m.Embeds)-1]
}
