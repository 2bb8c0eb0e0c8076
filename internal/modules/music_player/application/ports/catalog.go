package ports

import (
	"context"
	"errors"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

var (
	// ErrCatalogDisabled is returned by every data-fetching call of a catalog
	// whose credentials were not configured.
	ErrCatalogDisabled = errors.New("catalog is not configured")

	// ErrNotFound is returned when a catalog has no item for the given identifier.
	ErrNotFound = errors.New("not found")
)

// VideoCatalog looks up tracks on the video platform audio is streamed from.
type VideoCatalog interface {
	// Search returns up to limit tracks for a free-text query, ranked by relevance.
	Search(ctx context.Context, query string, limit int) ([]*domain.Track, error)

	// Video returns the track behind a single video URL.
	Video(ctx context.Context, url string) (*domain.Track, error)

	// Playlist expands a playlist by ID, skipping unavailable entries.
	Playlist(ctx context.Context, playlistID string) (*domain.Playlist, error)

	// ResolveQuery returns the URL of the best match for a deferred search query.
	ResolveQuery(ctx context.Context, query string) (string, error)
}

// MusicCatalog looks up tracks on the music streaming platform.
// Tracks it returns never carry a playable URL, only a deferred search query.
type MusicCatalog interface {
	// Track returns a single track by ID.
	Track(ctx context.Context, trackID string) (*domain.Track, error)

	// Playlist expands a playlist by ID.
	Playlist(ctx context.Context, playlistID string) (*domain.Playlist, error)
}
