package ports

import "github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	// PublishTrackEnded hands a stream completion over to the event loop.
	// It blocks until the event is queued or the publisher is closed, so that
	// no completion is ever lost.
	PublishTrackEnded(event domain.TrackEndedEvent)

	PublishPlaybackStarted(event domain.PlaybackStartedEvent)
	PublishPlaybackFinished(event domain.PlaybackFinishedEvent)
}
