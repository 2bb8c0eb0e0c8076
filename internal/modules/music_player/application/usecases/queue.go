package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID               snowflake.ID
	Track                 *domain.Track
	RequesterID           snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// EnqueuePlaylistInput contains the input for the EnqueuePlaylist use case.
type EnqueuePlaylistInput struct {
	GuildID               snowflake.ID
	Tracks                []*domain.Track
	RequesterID           snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// EnqueuePlaylistOutput contains the result of the EnqueuePlaylist use case.
type EnqueuePlaylistOutput struct {
	Count          int
	StartedPlaying bool
}

// QueueService handles queue operations.
type QueueService struct {
	repo     domain.GuildStateRepository
	playback *PlaybackService
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.GuildStateRepository,
	playback *PlaybackService,
) *QueueService {
	return &QueueService{
		repo:     repo,
		playback: playback,
	}
}

// Enqueue appends a track to the guild's queue, attaching the requester and
// the current time. When the guild is idle the track starts right away.
func (q *QueueService) Enqueue(ctx context.Context, input EnqueueInput) (*domain.QueuedTrack, error) {
	state := q.repo.Get(input.GuildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	input.Track.Stamp(input.RequesterID, time.Now())
	input.Track.Origin = domain.OriginSingle

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return nil, ErrNotConnected
	}

	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	state.Pending.Push(input.Track)

	started := q.startIfIdleLocked(ctx, state)

	return &domain.QueuedTrack{
		Track:          input.Track,
		Position:       positionOf(state, input.Track),
		StartedPlaying: started == input.Track,
	}, nil
}

// EnqueuePlaylist appends every track in order, with the same idle rule as
// Enqueue. Returns the number of tracks appended.
func (q *QueueService) EnqueuePlaylist(
	ctx context.Context,
	input EnqueuePlaylistInput,
) (*EnqueuePlaylistOutput, error) {
	state := q.repo.Get(input.GuildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	now := time.Now()
	for _, track := range input.Tracks {
		track.Stamp(input.RequesterID, now)
		track.Origin = domain.OriginPlaylist
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return nil, ErrNotConnected
	}

	if input.NotificationChannelID != 0 {
		state.SetNotificationChannelID(input.NotificationChannelID)
	}

	if len(input.Tracks) == 0 {
		return &EnqueuePlaylistOutput{}, nil
	}

	state.Pending.Push(input.Tracks...)

	started := q.startIfIdleLocked(ctx, state)

	return &EnqueuePlaylistOutput{
		Count:          len(input.Tracks),
		StartedPlaying: started != nil,
	}, nil
}

// Snapshot returns copies of the now-playing track (if any) followed by the
// pending tracks, and whether the first entry is the now-playing track. Both
// come from the same lock hold.
func (q *QueueService) Snapshot(guildID snowflake.ID) ([]domain.Track, bool) {
	state := q.repo.Get(guildID)
	if state == nil {
		return nil, false
	}

	state.Lock()
	defer state.Unlock()

	return state.Snapshot(), !state.IsIdle()
}

// NowPlaying returns a copy of the now-playing track, or nil.
func (q *QueueService) NowPlaying(guildID snowflake.ID) *domain.Track {
	state := q.repo.Get(guildID)
	if state == nil {
		return nil
	}

	state.Lock()
	defer state.Unlock()

	current := state.NowPlaying()
	if current == nil {
		return nil
	}
	track := *current
	return &track
}

// startIfIdleLocked starts the head of the queue if nothing occupies the
// now-playing slot. Check and claim happen under the same lock hold, so
// racing enqueues start at most one track.
func (q *QueueService) startIfIdleLocked(ctx context.Context, state *domain.GuildState) *domain.Track {
	if !state.IsIdle() {
		return nil
	}

	state.Advance()
	return q.playback.playCurrentLocked(ctx, state)
}

// positionOf returns 0 for the now-playing track, n for the n-th pending
// track, and -1 if the track was already consumed.
func positionOf(state *domain.GuildState, track *domain.Track) int {
	if state.NowPlaying() == track {
		return 0
	}
	for i, pending := range state.Pending.List() {
		if pending == track {
			return i + 1
		}
	}
	return -1
}
