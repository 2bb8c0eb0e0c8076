package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndedEvent is published by the audio transport's completion callback
// when a stream ends naturally, fails, or is stopped.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Track   *Track // identity of the track whose stream ended
	Err     error  // nil on natural end or stop
}

// PlaybackStartedEvent is published when a track is handed to the audio transport.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
}

// PlaybackFinishedEvent is published when a guild becomes idle, either because
// the queue drained or because playback was stopped.
// This signals that the "Now Playing" message should be deleted.
type PlaybackFinishedEvent struct {
	GuildID snowflake.ID
}
