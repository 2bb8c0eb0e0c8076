package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	timeout      time.Duration
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(voiceChannel *usecases.VoiceChannelService) *EventHandlers {
	return &EventHandlers{
		voiceChannel: voiceChannel,
		timeout:      DefaultCommandTimeout,
	}
}

// HandleVoiceStateUpdate follows the bot's own voice state so that sessions
// ended or moved from outside the bot are reflected in the guild state.
func (h *EventHandlers) HandleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	// Only handle updates for the bot itself
	if event.VoiceState == nil || !isSelf(s, event.UserID) {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel ID means the bot is no longer in voice
	if event.ChannelID == "" {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.voiceChannel.HandleBotDisconnected(ctx, guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	h.voiceChannel.HandleBotMoved(guildID, channelID)
}

// isSelf reports whether userID is the bot's own user. The user is only known
// once the gateway session is ready.
func isSelf(s *discordgo.Session, userID string) bool {
	return s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == userID
}
