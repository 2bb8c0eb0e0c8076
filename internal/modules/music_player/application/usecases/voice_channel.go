package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Moved          bool // an existing session was relocated
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	repo            domain.GuildStateRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	playback        *PlaybackService
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.GuildStateRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	playback *PlaybackService,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		playback:        playback,
	}
}

// Join connects the bot to a voice channel, creating the guild state on first
// use. An existing session on another channel is moved, never duplicated.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	// Determine which channel to join
	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrUserNotInVoice
		}
		voiceChannelID = userChannel
	}

	state := v.repo.GetOrCreate(input.GuildID)

	state.Lock()
	defer state.Unlock()

	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	// Already connected to the same channel - nothing else to do
	if state.VoiceChannelID() == voiceChannelID {
		return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
	}

	moved := state.IsConnected()

	if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	state.SetVoiceChannelID(voiceChannelID)

	slog.Info(
		"joined voice channel",
		"guild", input.GuildID,
		"channel", voiceChannelID,
		"moved", moved,
	)

	return &JoinOutput{VoiceChannelID: voiceChannelID, Moved: moved}, nil
}

// Leave stops playback, disconnects and discards the voice session.
// Returns false if the guild had no session.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) (bool, error) {
	state := v.repo.Get(input.GuildID)
	if state == nil {
		return false, nil
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return false, nil
	}

	if err := v.playback.stopLocked(ctx, state); err != nil {
		slog.Warn(
			"failed to stop playback while leaving",
			"guild", input.GuildID,
			"error", err,
		)
	}

	// The session is gone from our side regardless of what the gateway says.
	state.SetVoiceChannelID(0)

	if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
		return true, err
	}

	return true, nil
}

// HandleBotDisconnected clears the guild's playback after the bot was removed
// from voice by something other than the leave command (kicked, channel deleted).
func (v *VoiceChannelService) HandleBotDisconnected(ctx context.Context, guildID snowflake.ID) {
	state := v.repo.Get(guildID)
	if state == nil {
		return
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return
	}

	slog.Info("bot was disconnected from voice", "guild", guildID)

	if err := v.playback.stopLocked(ctx, state); err != nil {
		slog.Debug("failed to stop transport after disconnect", "guild", guildID, "error", err)
	}
	state.SetVoiceChannelID(0)
}

// HandleBotMoved records a channel change made outside of the join command.
func (v *VoiceChannelService) HandleBotMoved(guildID, channelID snowflake.ID) {
	state := v.repo.Get(guildID)
	if state == nil {
		return
	}

	state.Lock()
	defer state.Unlock()

	if state.IsConnected() && state.VoiceChannelID() != channelID {
		state.SetVoiceChannelID(channelID)
	}
}
