package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection manages the bot's single voice session per guild.
type VoiceConnection interface {
	// JoinChannel connects to channelID. When the guild already has a session
	// on another channel it is moved rather than reopened.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the guild's voice session.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}
