package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// DefaultSearchLimit is the number of results returned by the search command.
const DefaultSearchLimit = 5

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	Query string
}

// LoadTracksOutput contains the result of the LoadTracks use case.
type LoadTracksOutput struct {
	Tracks       []*domain.Track
	IsPlaylist   bool
	PlaylistName string
	Source       domain.TrackSource
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int
}

// TrackLoaderService turns play input into tracks using the two catalogs.
type TrackLoaderService struct {
	videos ports.VideoCatalog
	music  ports.MusicCatalog
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(videos ports.VideoCatalog, music ports.MusicCatalog) *TrackLoaderService {
	return &TrackLoaderService{
		videos: videos,
		music:  music,
	}
}

// LoadTracks classifies the query and fetches the matching track or playlist.
// Free text resolves to the single best video match.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	query := domain.ParseQuery(input.Query)

	switch query.Kind {
	case domain.QueryUnsupportedURL:
		return nil, ErrUnsupportedURL

	case domain.QueryYouTubeVideo:
		track, err := s.videos.Video(ctx, domain.YouTubeWatchURL(query.ID))
		if err != nil {
			return nil, loadError(err)
		}
		return single(track, domain.TrackSourceYouTube)

	case domain.QueryYouTubePlaylist:
		playlist, err := s.videos.Playlist(ctx, query.ID)
		if err != nil {
			return nil, loadError(err)
		}
		return fromPlaylist(playlist, domain.TrackSourceYouTube)

	case domain.QuerySpotifyTrack:
		track, err := s.music.Track(ctx, query.ID)
		if err != nil {
			return nil, loadError(err)
		}
		return single(track, domain.TrackSourceSpotify)

	case domain.QuerySpotifyPlaylist:
		playlist, err := s.music.Playlist(ctx, query.ID)
		if err != nil {
			return nil, loadError(err)
		}
		return fromPlaylist(playlist, domain.TrackSourceSpotify)

	default:
		tracks, err := s.videos.Search(ctx, query.Input, 1)
		if err != nil {
			return nil, loadError(err)
		}
		if len(tracks) == 0 {
			return nil, ErrNoResults
		}
		return single(tracks[0], domain.TrackSourceYouTube)
	}
}

// SearchTracks returns up to Limit ranked video matches for the query.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) ([]*domain.Track, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	tracks, err := s.videos.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, loadError(err)
	}
	tracks = playable(tracks)
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	return tracks, nil
}

func single(track *domain.Track, source domain.TrackSource) (*LoadTracksOutput, error) {
	if track == nil || !track.IsValid() {
		return nil, ErrNoResults
	}

	return &LoadTracksOutput{
		Tracks: []*domain.Track{track},
		Source: source,
	}, nil
}

// fromPlaylist drops entries that cannot be played, such as removed videos
// that come back without a title.
func fromPlaylist(playlist *domain.Playlist, source domain.TrackSource) (*LoadTracksOutput, error) {
	if playlist == nil {
		return nil, ErrNoResults
	}

	tracks := playable(playlist.Tracks)
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	return &LoadTracksOutput{
		Tracks:       tracks,
		IsPlaylist:   true,
		PlaylistName: playlist.Name,
		Source:       source,
	}, nil
}

func playable(tracks []*domain.Track) []*domain.Track {
	out := make([]*domain.Track, 0, len(tracks))
	for _, track := range tracks {
		if track != nil && track.IsValid() {
			out = append(out, track)
		}
	}
	return out
}

// loadError keeps ErrCatalogDisabled visible to callers and maps the rest of
// the catalog failures onto the use case errors.
func loadError(err error) error {
	switch {
	case errors.Is(err, ports.ErrCatalogDisabled):
		return err
	case errors.Is(err, ports.ErrNotFound):
		return ErrNoResults
	default:
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
}
