package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
//
// TrackEndedEvent is dispatched on one lane per guild: a guild's completions
// run in publish order, while a slow handler for one guild never delays
// another. The notification events share one dispatcher per type.
type ChannelEventBus struct {
	// Channels for event delivery
	trackEndedLanes  map[snowflake.ID]chan domain.TrackEndedEvent
	playbackStarted  chan domain.PlaybackStartedEvent
	playbackFinished chan domain.PlaybackFinishedEvent

	// Handler slices for callback-based subscription
	trackEndedHandlers       []func(context.Context, domain.TrackEndedEvent)
	playbackStartedHandlers  []func(context.Context, domain.PlaybackStartedEvent)
	playbackFinishedHandlers []func(context.Context, domain.PlaybackFinishedEvent)

	bufferSize int
	lanesMu    sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackEndedLanes:  make(map[snowflake.ID]chan domain.TrackEndedEvent),
		playbackStarted:  make(chan domain.PlaybackStartedEvent, bufferSize),
		playbackFinished: make(chan domain.PlaybackFinishedEvent, bufferSize),
		bufferSize:       bufferSize,
		ctx:              ctx,
		cancel:           cancel,
	}

	// Start dispatcher goroutines
	bus.wg.Add(2)
	go dispatch(bus, bus.playbackStarted, func() []func(context.Context, domain.PlaybackStartedEvent) {
		return bus.playbackStartedHandlers
	})
	go dispatch(bus, bus.playbackFinished, func() []func(context.Context, domain.PlaybackFinishedEvent) {
		return bus.playbackFinishedHandlers
	})

	return bus
}

// dispatch delivers events from ch to the handlers returned by handlers
// until the bus is closed.
func dispatch[E any](
	b *ChannelEventBus,
	ch <-chan E,
	handlers func() []func(context.Context, E),
) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			b.mu.RLock()
			hs := handlers()
			b.mu.RUnlock()
			for _, handler := range hs {
				handler(b.ctx, event)
			}
		}
	}
}

// trackEndedLane returns the guild's TrackEnded lane, starting its dispatcher
// on first use. Callers hold b.mu for reading with the bus still open.
func (b *ChannelEventBus) trackEndedLane(guildID snowflake.ID) chan domain.TrackEndedEvent {
	b.lanesMu.Lock()
	defer b.lanesMu.Unlock()

	if lane, ok := b.trackEndedLanes[guildID]; ok {
		return lane
	}

	lane := make(chan domain.TrackEndedEvent, b.bufferSize)
	b.trackEndedLanes[guildID] = lane

	b.wg.Add(1)
	go dispatch(b, lane, func() []func(context.Context, domain.TrackEndedEvent) {
		return b.trackEndedHandlers
	})

	return lane
}

// --- EventPublisher interface ---

// PublishTrackEnded publishes a TrackEndedEvent.
// Blocking: a completion must never be dropped, so this waits for space in
// the guild's lane and only gives up once the bus is closed.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "TrackEnded")
		return
	}

	select {
	case b.trackEndedLane(event.GuildID) <- event:
		slog.Debug("published event", "type", "TrackEnded", "guild", event.GuildID)
	case <-b.ctx.Done():
		slog.Warn("event bus closing, dropping event", "type", "TrackEnded")
	}
}

// PublishPlaybackStarted publishes a PlaybackStartedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "PlaybackStarted")
		return
	}

	select {
	case b.playbackStarted <- event:
		slog.Debug("published event", "type", "PlaybackStarted", "guild", event.GuildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "PlaybackStarted")
	}
}

// PublishPlaybackFinished publishes a PlaybackFinishedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishPlaybackFinished(event domain.PlaybackFinishedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "PlaybackFinished")
		return
	}

	select {
	case b.playbackFinished <- event:
		slog.Debug("published event", "type", "PlaybackFinished", "guild", event.GuildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "PlaybackFinished")
	}
}

// --- EventSubscriber interface ---

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackEndedHandlers = append(b.trackEndedHandlers, handler)
}

// OnPlaybackStarted registers a handler for PlaybackStartedEvent.
func (b *ChannelEventBus) OnPlaybackStarted(
	handler func(context.Context, domain.PlaybackStartedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbackStartedHandlers = append(b.playbackStartedHandlers, handler)
}

// OnPlaybackFinished registers a handler for PlaybackFinishedEvent.
func (b *ChannelEventBus) OnPlaybackFinished(
	handler func(context.Context, domain.PlaybackFinishedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbackFinishedHandlers = append(b.playbackFinishedHandlers, handler)
}

// Close stops the dispatchers. After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	// Cancel first so a publisher blocked on a full buffer releases its read lock.
	b.cancel()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	// Wait for dispatchers to finish
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
