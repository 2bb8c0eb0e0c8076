package domain

import (
	"regexp"
	"strings"
)

// QueryKind classifies the free-form input of a play command.
type QueryKind int

const (
	QuerySearch QueryKind = iota
	QueryYouTubeVideo
	QueryYouTubePlaylist
	QuerySpotifyTrack
	QuerySpotifyPlaylist
	QueryUnsupportedURL
)

func (k QueryKind) String() string {
	switch k {
	case QueryYouTubeVideo:
		return "youtube_video"
	case QueryYouTubePlaylist:
		return "youtube_playlist"
	case QuerySpotifyTrack:
		return "spotify_track"
	case QuerySpotifyPlaylist:
		return "spotify_playlist"
	case QueryUnsupportedURL:
		return "unsupported_url"
	default:
		return "search"
	}
}

// Query is a classified play input. ID carries the catalog identifier for
// playlist and track kinds, and the raw text is kept in Input.
type Query struct {
	Kind  QueryKind
	Input string
	ID    string
}

var (
	youTubeVideoPattern     = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|v/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	youTubePlaylistPattern  = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
	spotifyPlaylistPattern  = regexp.MustCompile(`spotify\.com/(?:intl-[a-z]+/)?playlist/([a-zA-Z0-9]+)`)
	spotifyTrackPattern     = regexp.MustCompile(`spotify\.com/(?:intl-[a-z]+/)?track/([a-zA-Z0-9]+)`)
	youTubeWatchURLTemplate = "https://www.youtube.com/watch?v="
)

// ParseQuery classifies input. Anything that does not look like a URL is a
// search on the video catalog.
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	q := Query{Kind: QuerySearch, Input: input}

	if !isURL(input) {
		return q
	}

	switch {
	case strings.Contains(input, "youtube.com/playlist"):
		if m := youTubePlaylistPattern.FindStringSubmatch(input); m != nil {
			q.Kind = QueryYouTubePlaylist
			q.ID = m[1]
			return q
		}
	case strings.Contains(input, "spotify.com/") && strings.Contains(input, "/playlist/"):
		if m := spotifyPlaylistPattern.FindStringSubmatch(input); m != nil {
			q.Kind = QuerySpotifyPlaylist
			q.ID = m[1]
			return q
		}
	case strings.Contains(input, "spotify.com/") && strings.Contains(input, "/track/"):
		if m := spotifyTrackPattern.FindStringSubmatch(input); m != nil {
			q.Kind = QuerySpotifyTrack
			q.ID = m[1]
			return q
		}
	default:
		if m := youTubeVideoPattern.FindStringSubmatch(input); m != nil {
			q.Kind = QueryYouTubeVideo
			q.ID = m[1]
			return q
		}
	}

	q.Kind = QueryUnsupportedURL
	return q
}

// YouTubeWatchURL builds the canonical watch URL for a video ID.
func YouTubeWatchURL(videoID string) string {
	return youTubeWatchURLTemplate + videoID
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}
