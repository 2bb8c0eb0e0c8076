package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// newTestNotifier serves only the thumbnail qualities listed in available.
func newTestNotifier(t *testing.T, available ...string) (*Notifier, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		for _, quality := range available {
			if strings.HasSuffix(r.URL.Path, "/"+quality+".jpg") {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier(nil)
	n.httpClient = srv.Client()
	n.thumbnailBaseURL = srv.URL + "/vi"
	return n, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), requested...)
	}
}

func TestNotifier_NowPlayingEmbed(t *testing.T) {
	n, _ := newTestNotifier(t, "hqdefault")
	enqueuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	embed := n.nowPlayingEmbed(&ports.NowPlayingInfo{
		Title:              "Song",
		Author:             "Artist",
		Duration:           "3:32",
		URL:                "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ThumbnailURL:       "https://i.ytimg.com/default.jpg",
		Source:             domain.TrackSourceYouTube,
		RequesterID:        42,
		RequesterName:      "alice",
		RequesterAvatarURL: "https://cdn.example/alice.png",
		EnqueuedAt:         enqueuedAt,
	})

	if embed.Author.Name != "Now Playing" {
		t.Errorf("expected heading Now Playing, got %q", embed.Author.Name)
	}
	if embed.Title != "Song" || embed.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected title/url %q %q", embed.Title, embed.URL)
	}
	if embed.Color != domain.TrackSourceYouTube.Color() {
		t.Errorf("expected youtube color, got %x", embed.Color)
	}
	if embed.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("unexpected timestamp %q", embed.Timestamp)
	}
	if len(embed.Fields) != 2 || embed.Fields[0].Value != "Artist" || embed.Fields[1].Value != "3:32" {
		t.Errorf("unexpected fields %+v", embed.Fields)
	}
	if embed.Footer == nil || embed.Footer.Text != "Requested by alice" {
		t.Errorf("unexpected footer %+v", embed.Footer)
	}
	if embed.Image == nil || !strings.HasSuffix(embed.Image.URL, "/vi/dQw4w9WgXcQ/hqdefault.jpg") {
		t.Errorf("expected upgraded thumbnail, got %+v", embed.Image)
	}
}

func TestNotifier_BestThumbnail(t *testing.T) {
	t.Run("falls back when no variant exists", func(t *testing.T) {
		n, requested := newTestNotifier(t)

		got := n.bestThumbnail(&ports.NowPlayingInfo{
			URL:          "https://youtu.be/dQw4w9WgXcQ",
			ThumbnailURL: "https://i.ytimg.com/default.jpg",
			Source:       domain.TrackSourceYouTube,
		})

		if got != "https://i.ytimg.com/default.jpg" {
			t.Errorf("expected fallback thumbnail, got %q", got)
		}
		if len(requested()) != len(youtubeThumbnailQualities) {
			t.Errorf("expected every quality requested, got %v", requested())
		}
	})

	t.Run("prefers the best variant", func(t *testing.T) {
		n, requested := newTestNotifier(t, "maxresdefault", "sddefault")

		got := n.bestThumbnail(&ports.NowPlayingInfo{
			URL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Source: domain.TrackSourceYouTube,
		})

		if !strings.HasSuffix(got, "/maxresdefault.jpg") {
			t.Errorf("expected maxresdefault, got %q", got)
		}
		if len(requested()) != 1 {
			t.Errorf("expected a single request, got %v", requested())
		}
	})

	t.Run("spotify artwork is kept without probing", func(t *testing.T) {
		n, requested := newTestNotifier(t, "maxresdefault")

		got := n.bestThumbnail(&ports.NowPlayingInfo{
			ThumbnailURL: "https://i.scdn.co/cover",
			Source:       domain.TrackSourceSpotify,
		})

		if got != "https://i.scdn.co/cover" {
			t.Errorf("expected spotify artwork, got %q", got)
		}
		if len(requested()) != 0 {
			t.Errorf("expected no requests, got %v", requested())
		}
	})
}

func TestNotifier_PlaylistHeadingWithoutRequester(t *testing.T) {
	n, _ := newTestNotifier(t)

	embed := n.nowPlayingEmbed(&ports.NowPlayingInfo{
		Title:        "Track",
		Duration:     "LIVE",
		Source:       domain.TrackSourceSpotify,
		FromPlaylist: true,
	})

	if embed.Author.Name != "Now Playing from Playlist" {
		t.Errorf("unexpected heading %q", embed.Author.Name)
	}
	if embed.Footer != nil {
		t.Errorf("expected no footer without a requester name, got %+v", embed.Footer)
	}
	if len(embed.Fields) != 1 || embed.Fields[0].Name != "Duration" {
		t.Errorf("expected only the duration field, got %+v", embed.Fields)
	}
	if embed.Timestamp != "" {
		t.Errorf("expected no timestamp, got %q", embed.Timestamp)
	}
}
