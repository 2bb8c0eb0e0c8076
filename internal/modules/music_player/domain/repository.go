package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// GuildStateRepository stores one GuildState per guild.
type GuildStateRepository interface {
	// Get returns the GuildState for the given guild, or nil if not exists.
	Get(guildID snowflake.ID) *GuildState

	// GetOrCreate returns the GuildState for the guild, creating it on first use.
	// Concurrent first calls for the same guild receive the same instance.
	GetOrCreate(guildID snowflake.ID) *GuildState
}
