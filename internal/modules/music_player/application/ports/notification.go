package ports

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Title              string
	Author             string
	Duration           string
	URL                string
	ThumbnailURL       string
	Source             domain.TrackSource
	FromPlaylist       bool
	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
	EnqueuedAt         time.Time
}

// NotificationSender defines the interface for sending notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) (messageID snowflake.ID, err error)

	// DeleteMessage deletes a message from the channel.
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error
}
