package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Skipped      bool
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if the queue drained
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// DefaultLookupTimeout bounds a single search-query lookup when no timeout is
// configured.
const DefaultLookupTimeout = 30 * time.Second

// PlaybackService sequences playback per guild.
//
// Every transition of a guild's now-playing slot happens while holding that
// guild's state lock, so exactly one pass owns starting a given track. Stream
// completions arrive on the transport's goroutine and are handed back through
// the event bus as TrackEndedEvent rather than touching state directly.
type PlaybackService struct {
	repo      domain.GuildStateRepository
	transport ports.AudioTransport
	videos    ports.VideoCatalog
	publisher ports.EventPublisher

	lookupTimeout time.Duration
}

// NewPlaybackService creates a new PlaybackService.
// A non-positive lookupTimeout falls back to DefaultLookupTimeout.
func NewPlaybackService(
	repo domain.GuildStateRepository,
	transport ports.AudioTransport,
	videos ports.VideoCatalog,
	publisher ports.EventPublisher,
	lookupTimeout time.Duration,
) *PlaybackService {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}

	return &PlaybackService{
		repo:          repo,
		transport:     transport,
		videos:        videos,
		publisher:     publisher,
		lookupTimeout: lookupTimeout,
	}
}

// PlayNext moves the head of the pending queue into the now-playing slot and
// starts it, skipping tracks that cannot be resolved or started.
// Returns the track that started playing, or nil once the queue is drained.
func (p *PlaybackService) PlayNext(ctx context.Context, guildID snowflake.ID) *domain.Track {
	state := p.repo.Get(guildID)
	if state == nil {
		return nil
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		state.ClearNowPlaying()
		return nil
	}

	state.Advance()
	return p.playCurrentLocked(ctx, state)
}

// HandleTrackEnded advances the queue after the stream of event.Track ended.
// Completions of tracks that no longer occupy the now-playing slot are ignored.
func (p *PlaybackService) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	state := p.repo.Get(event.GuildID)
	if state == nil {
		return
	}

	state.Lock()
	defer state.Unlock()

	if event.Track == nil || state.NowPlaying() != event.Track {
		slog.Debug(
			"ignoring stale track completion",
			"guild", event.GuildID,
		)
		return
	}

	if event.Err != nil {
		slog.Warn(
			"stream failed, advancing queue",
			"guild", event.GuildID,
			"title", event.Track.Title,
			"error", event.Err,
		)
	} else {
		slog.Debug(
			"track ended, advancing queue",
			"guild", event.GuildID,
			"title", event.Track.Title,
		)
	}

	if !state.IsConnected() {
		state.ClearNowPlaying()
		return
	}

	state.Advance()
	p.playCurrentLocked(ctx, state)
}

// Skip ends the current track and starts the next one.
// Returns Skipped=false without touching state when nothing occupies the now-playing slot.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	state := p.repo.Get(input.GuildID)
	if state == nil {
		return &SkipOutput{}, nil
	}

	state.Lock()
	defer state.Unlock()

	if state.IsIdle() {
		return &SkipOutput{}, nil
	}

	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	skipped := state.NowPlaying()
	state.Advance()
	next := p.playCurrentLocked(ctx, state)

	return &SkipOutput{
		Skipped:      true,
		SkippedTrack: skipped,
		NextTrack:    next,
	}, nil
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	state := p.repo.Get(input.GuildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return ErrNotConnected
	}

	// Update notification channel if provided
	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	if state.IsIdle() {
		return ErrNotPlaying
	}
	if state.IsPaused() {
		return ErrAlreadyPaused
	}

	if err := p.transport.Pause(ctx, input.GuildID); err != nil {
		return transportError(err)
	}

	state.SetPaused(true)

	return nil
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	state := p.repo.Get(input.GuildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return ErrNotConnected
	}

	// Update notification channel if provided
	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	if state.IsIdle() {
		return ErrNotPlaying
	}
	if !state.IsPaused() {
		return ErrNotPaused
	}

	if err := p.transport.Resume(ctx, input.GuildID); err != nil {
		return transportError(err)
	}

	state.SetPaused(false)

	return nil
}

// transportError maps a stream that already ended, but whose completion has
// not been handled yet, onto ErrNotPlaying.
func transportError(err error) error {
	if errors.Is(err, ports.ErrNoActiveStream) {
		return ErrNotPlaying
	}
	return err
}

// Stop clears the pending queue and the now-playing slot and stops the
// transport. The voice connection is kept.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	state := p.repo.Get(input.GuildID)
	if state == nil {
		return nil
	}

	state.Lock()
	defer state.Unlock()

	return p.stopLocked(ctx, state)
}

func (p *PlaybackService) stopLocked(ctx context.Context, state *domain.GuildState) error {
	wasActive := !state.IsIdle()
	state.Reset()

	if !wasActive {
		return nil
	}

	p.publisher.PublishPlaybackFinished(domain.PlaybackFinishedEvent{GuildID: state.GuildID()})

	return p.transport.Stop(ctx, state.GuildID())
}

// playCurrentLocked starts the track in the now-playing slot, advancing past
// tracks that fail to resolve or start until one starts or the queue drains.
// The caller must hold the state lock. The lock is released while a deferred
// query is looked up; if another pass claims the slot meanwhile, this pass
// returns nil and leaves the slot to it.
func (p *PlaybackService) playCurrentLocked(
	ctx context.Context,
	state *domain.GuildState,
) *domain.Track {
	guildID := state.GuildID()

	for track := state.NowPlaying(); track != nil; track = state.Advance() {
		if track.NeedsLookup() {
			query := track.SearchQuery

			state.Unlock()
			url, err := p.resolve(ctx, query)
			state.Lock()

			if state.NowPlaying() != track {
				slog.Debug(
					"now playing changed during lookup, abandoning pass",
					"guild", guildID,
					"query", query,
				)
				return nil
			}
			if err != nil {
				slog.Warn(
					"failed to resolve track, skipping",
					"guild", guildID,
					"query", query,
					"error", err,
				)
				continue
			}

			track.ResolveURL(url)
		}

		if track.URL == "" {
			slog.Warn(
				"track has no playable URL, skipping",
				"guild", guildID,
				"title", track.Title,
			)
			continue
		}

		err := p.transport.Play(ctx, guildID, track.URL, p.completionFor(guildID, track))
		if err != nil {
			slog.Warn(
				"failed to start playback, skipping",
				"guild", guildID,
				"title", track.Title,
				"error", err,
			)
			continue
		}

		slog.Info(
			"now playing",
			"guild", guildID,
			"title", track.Title,
			"url", track.URL,
		)

		p.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
			GuildID:               guildID,
			Track:                 *track,
			NotificationChannelID: state.NotificationChannelID(),
		})

		return track
	}

	slog.Debug("queue drained", "guild", guildID)

	if err := p.transport.Stop(ctx, guildID); err != nil {
		slog.Debug("failed to stop transport after draining", "guild", guildID, "error", err)
	}
	p.publisher.PublishPlaybackFinished(domain.PlaybackFinishedEvent{GuildID: guildID})

	return nil
}

// completionFor returns the transport callback for track. It only publishes;
// the state transition happens on the event loop in HandleTrackEnded.
func (p *PlaybackService) completionFor(guildID snowflake.ID, track *domain.Track) func(error) {
	return func(err error) {
		p.publisher.PublishTrackEnded(domain.TrackEndedEvent{
			GuildID: guildID,
			Track:   track,
			Err:     err,
		})
	}
}

// resolve looks up a search query, bounded by the lookup timeout. Callers
// must not hold the guild lock.
func (p *PlaybackService) resolve(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
	defer cancel()

	return p.videos.ResolveQuery(ctx, query)
}
