package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// playlistItemsPageSize is the largest page the playlist items endpoint serves.
const playlistItemsPageSize = 100

// Ensure SpotifyCatalog implements ports.MusicCatalog.
var _ ports.MusicCatalog = (*SpotifyCatalog)(nil)

// SpotifyCatalog reads tracks and playlists from the Spotify Web API.
// Spotify audio cannot be streamed, so every track it returns is deferred:
// it carries a search query that is resolved on the video catalog at play time.
type SpotifyCatalog struct {
	api     Gate[*spotify.Client]
	limiter *rate.Limiter
}

// NewSpotifyCatalog creates a SpotifyCatalog authenticated with the client
// credentials flow. Without credentials the catalog is disabled.
func NewSpotifyCatalog(
	ctx context.Context,
	clientID, clientSecret string,
	limiter *rate.Limiter,
) *SpotifyCatalog {
	if clientID == "" || clientSecret == "" {
		slog.Warn("SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set, Spotify catalog disabled")
		return &SpotifyCatalog{
			api:     Disabled[*spotify.Client]("SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set"),
			limiter: limiter,
		}
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	client := spotify.New(config.Client(ctx), spotify.WithRetry(true))

	return NewSpotifyCatalogWithClient(client, limiter)
}

// NewSpotifyCatalogWithClient creates an enabled SpotifyCatalog around client.
func NewSpotifyCatalogWithClient(client *spotify.Client, limiter *rate.Limiter) *SpotifyCatalog {
	return &SpotifyCatalog{
		api:     Enabled(client),
		limiter: limiter,
	}
}

// Enabled reports whether the catalog has credentials.
func (c *SpotifyCatalog) Enabled() bool {
	return c.api.IsEnabled()
}

// Track returns a single deferred track.
func (c *SpotifyCatalog) Track(ctx context.Context, trackID string) (*domain.Track, error) {
	client, err := c.api.Get()
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	full, err := client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, spotifyError("track", err)
	}

	track := spotifyTrack(full)
	track.Origin = domain.OriginSingle
	return track, nil
}

// Playlist returns the tracks of a playlist in playlist order. Podcast
// episodes and unavailable entries are skipped.
func (c *SpotifyCatalog) Playlist(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	client, err := c.api.Get()
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	meta, err := client.GetPlaylist(ctx, spotify.ID(playlistID), spotify.Fields("name"))
	if err != nil {
		return nil, spotifyError("playlist", err)
	}

	playlist := &domain.Playlist{Name: meta.Name}

	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}
	page, err := client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(playlistItemsPageSize))
	if err != nil {
		return nil, spotifyError("playlist items", err)
	}

	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			track := spotifyTrack(item.Track.Track)
			track.Origin = domain.OriginPlaylist
			playlist.Tracks = append(playlist.Tracks, track)
		}

		if err := wait(ctx, c.limiter); err != nil {
			return nil, err
		}
		err := client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, spotifyError("playlist items", err)
		}
	}

	slog.Debug(
		"expanded spotify playlist",
		"playlist", playlistID,
		"tracks", len(playlist.Tracks),
	)

	return playlist, nil
}

// spotifyTrack converts a Spotify track into a deferred track.
func spotifyTrack(full *spotify.FullTrack) *domain.Track {
	artists := make([]string, 0, len(full.Artists))
	for _, artist := range full.Artists {
		artists = append(artists, artist.Name)
	}

	query := full.Name
	if len(artists) > 0 {
		query += " " + artists[0]
	}

	var thumbnail string
	if len(full.Album.Images) > 0 {
		thumbnail = full.Album.Images[0].URL
	}

	return &domain.Track{
		Title:        full.Name,
		SearchQuery:  query,
		Author:       strings.Join(artists, ", "),
		Duration:     time.Duration(full.Duration) * time.Millisecond,
		ThumbnailURL: thumbnail,
		Source:       domain.TrackSourceSpotify,
	}
}

// spotifyError maps a 404 to ports.ErrNotFound.
func spotifyError(what string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		return ports.ErrNotFound
	}
	return fmt.Errorf("spotify %s lookup failed: %w", what, err)
}
