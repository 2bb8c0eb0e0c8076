package infrastructure

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// playlistPageSize is the largest page playlistItems.list serves.
const playlistPageSize = 50

// Titles YouTube substitutes for playlist entries that cannot be played.
var unavailableTitles = map[string]struct{}{
	"Private video": {},
	"Deleted video": {},
}

// Ensure YouTubeCatalog implements ports.VideoCatalog.
var _ ports.VideoCatalog = (*YouTubeCatalog)(nil)

// VideoInfoProvider fetches metadata of a single video.
type VideoInfoProvider interface {
	VideoInfo(ctx context.Context, url string) (*domain.Track, error)
}

// YouTubeCatalog searches and expands playlists through the YouTube Data API
// and reads single-video metadata through yt-dlp.
type YouTubeCatalog struct {
	api     Gate[*youtube.Service]
	videos  VideoInfoProvider
	limiter *rate.Limiter
}

// NewYouTubeCatalog creates a YouTubeCatalog. Without an API key the catalog
// is disabled and every lookup fails with ports.ErrCatalogDisabled.
func NewYouTubeCatalog(
	ctx context.Context,
	apiKey string,
	videos VideoInfoProvider,
	limiter *rate.Limiter,
	opts ...option.ClientOption,
) *YouTubeCatalog {
	c := &YouTubeCatalog{
		videos:  videos,
		limiter: limiter,
	}

	if apiKey == "" && len(opts) == 0 {
		slog.Warn("YOUTUBE_API_KEY is not set, YouTube catalog disabled")
		c.api = Disabled[*youtube.Service]("YOUTUBE_API_KEY is not set")
		return c
	}

	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Warn("failed to create YouTube client, YouTube catalog disabled", "error", err)
		c.api = Disabled[*youtube.Service](err.Error())
		return c
	}

	c.api = Enabled(service)
	return c
}

// Enabled reports whether the catalog has a working API client.
func (c *YouTubeCatalog) Enabled() bool {
	return c.api.IsEnabled()
}

// Search returns up to limit videos for query, ranked by relevance.
func (c *YouTubeCatalog) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]*domain.Track, error) {
	service, err := c.api.Get()
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	resp, err := service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("relevance").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	tracks := make([]*domain.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		tracks = append(tracks, &domain.Track{
			Title:        html.UnescapeString(item.Snippet.Title),
			URL:          domain.YouTubeWatchURL(item.Id.VideoId),
			Author:       item.Snippet.ChannelTitle,
			ThumbnailURL: defaultThumbnail(item.Snippet.Thumbnails),
			Source:       domain.TrackSourceYouTube,
		})
	}

	return tracks, nil
}

// Video returns the track behind a single video URL.
func (c *YouTubeCatalog) Video(ctx context.Context, url string) (*domain.Track, error) {
	if _, err := c.api.Get(); err != nil {
		return nil, err
	}
	return c.videos.VideoInfo(ctx, url)
}

// Playlist returns the playable entries of a playlist in playlist order.
func (c *YouTubeCatalog) Playlist(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	service, err := c.api.Get()
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	meta, err := service.Playlists.List([]string{"snippet"}).
		Id(playlistID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube playlist lookup failed: %w", err)
	}
	if len(meta.Items) == 0 || meta.Items[0].Snippet == nil {
		return nil, ports.ErrNotFound
	}

	playlist := &domain.Playlist{Name: meta.Items[0].Snippet.Title}

	pageToken := ""
	for {
		if err := wait(ctx, c.limiter); err != nil {
			return nil, err
		}

		call := service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(playlistPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("youtube playlist items lookup failed: %w", err)
		}

		for _, item := range page.Items {
			if track := playlistItemTrack(item); track != nil {
				playlist.Tracks = append(playlist.Tracks, track)
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	slog.Debug(
		"expanded youtube playlist",
		"playlist", playlistID,
		"tracks", len(playlist.Tracks),
	)

	return playlist, nil
}

// ResolveQuery returns the URL of the top search result for query.
func (c *YouTubeCatalog) ResolveQuery(ctx context.Context, query string) (string, error) {
	tracks, err := c.Search(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", ports.ErrNotFound
	}
	return tracks[0].URL, nil
}

// playlistItemTrack converts a playlist entry, or returns nil for entries
// that cannot be played.
func playlistItemTrack(item *youtube.PlaylistItem) *domain.Track {
	snippet := item.Snippet
	if snippet == nil || snippet.ResourceId == nil || snippet.ResourceId.VideoId == "" {
		return nil
	}
	if _, ok := unavailableTitles[snippet.Title]; ok {
		return nil
	}

	author := snippet.VideoOwnerChannelTitle
	if author == "" {
		author = snippet.ChannelTitle
	}

	return &domain.Track{
		Title:        snippet.Title,
		URL:          domain.YouTubeWatchURL(snippet.ResourceId.VideoId),
		Author:       author,
		ThumbnailURL: defaultThumbnail(snippet.Thumbnails),
		Source:       domain.TrackSourceYouTube,
		Origin:       domain.OriginPlaylist,
	}
}

func defaultThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil || thumbnails.Default == nil {
		return ""
	}
	return thumbnails.Default.Url
}
