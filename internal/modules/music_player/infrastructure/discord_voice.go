package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
)

// ErrNoVoiceConnection is returned when a guild has no open voice connection.
var ErrNoVoiceConnection = errors.New("no voice connection for guild")

// Ensure DiscordVoiceConnection implements ports.VoiceConnection.
var _ ports.VoiceConnection = (*DiscordVoiceConnection)(nil)

// DiscordVoiceConnection opens and closes discordgo voice connections.
// discordgo keeps at most one connection per guild, so joining another
// channel in the same guild moves the existing connection.
type DiscordVoiceConnection struct {
	session *discordgo.Session
}

// NewDiscordVoiceConnection creates a new DiscordVoiceConnection.
func NewDiscordVoiceConnection(session *discordgo.Session) *DiscordVoiceConnection {
	return &DiscordVoiceConnection{session: session}
}

// JoinChannel connects to the voice channel, self-deafened.
func (v *DiscordVoiceConnection) JoinChannel(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := v.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)
	return nil
}

// LeaveChannel disconnects the guild's voice connection, if any.
func (v *DiscordVoiceConnection) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vc, err := v.Connection(guildID)
	if errors.Is(err, ErrNoVoiceConnection) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}

	slog.Info("left voice channel", "guild", guildID)
	return nil
}

// Connection returns the open voice connection of a guild.
func (v *DiscordVoiceConnection) Connection(guildID snowflake.ID) (*discordgo.VoiceConnection, error) {
	v.session.RLock()
	vc, ok := v.session.VoiceConnections[guildID.String()]
	v.session.RUnlock()

	if !ok || vc == nil {
		return nil, ErrNoVoiceConnection
	}
	return vc, nil
}
