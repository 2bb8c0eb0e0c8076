package ports

import (
	"context"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// EventSubscriber defines the interface for subscribing to events.
// Handlers are registered with the subscriber and invoked when events occur.
type EventSubscriber interface {
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnPlaybackStarted(handler func(context.Context, domain.PlaybackStartedEvent))
	OnPlaybackFinished(handler func(context.Context, domain.PlaybackFinishedEvent))
}
