package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
)

const testBotID snowflake.ID = 10

func botSession() *discordgo.Session {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: testBotID.String()}
	return &discordgo.Session{State: state}
}

func voiceStateUpdate(userID, channelID string) *discordgo.VoiceStateUpdate {
	return &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			GuildID:   testGuildID.String(),
			UserID:    userID,
			ChannelID: channelID,
		},
	}
}

func TestEventHandlers_HandleVoiceStateUpdate(t *testing.T) {
	joined := func(t *testing.T) (*testHandlers, *EventHandlers) {
		t.Helper()
		th := newTestHandlers()
		_, err := th.voice.Join(context.Background(), usecases.JoinInput{
			GuildID: testGuildID,
			UserID:  testUserID,
		})
		if err != nil {
			t.Fatalf("unexpected join error: %v", err)
		}
		return th, NewEventHandlers(th.voice)
	}

	t.Run("ignores other users", func(t *testing.T) {
		th, h := joined(t)

		h.HandleVoiceStateUpdate(botSession(), voiceStateUpdate(testUserID.String(), ""))

		if !th.repo.Get(testGuildID).IsConnected() {
			t.Error("expected guild to stay connected")
		}
	})

	t.Run("ignores nil voice state", func(t *testing.T) {
		_, h := joined(t)

		h.HandleVoiceStateUpdate(botSession(), &discordgo.VoiceStateUpdate{})
	})

	t.Run("bot disconnected clears session", func(t *testing.T) {
		th, h := joined(t)

		h.HandleVoiceStateUpdate(botSession(), voiceStateUpdate(testBotID.String(), ""))

		if state := th.repo.Get(testGuildID); state != nil && state.IsConnected() {
			t.Error("expected guild to be disconnected")
		}
	})

	t.Run("ignores updates before the session is ready", func(t *testing.T) {
		th, h := joined(t)

		h.HandleVoiceStateUpdate(nil, voiceStateUpdate(testBotID.String(), ""))

		if !th.repo.Get(testGuildID).IsConnected() {
			t.Error("expected guild to stay connected")
		}
	})

	t.Run("bot moved updates channel", func(t *testing.T) {
		th, h := joined(t)

		h.HandleVoiceStateUpdate(botSession(), voiceStateUpdate(testBotID.String(), "42"))

		if got := th.repo.Get(testGuildID).VoiceChannelID(); got != 42 {
			t.Errorf("expected voice channel 42, got %d", got)
		}
	})
}
