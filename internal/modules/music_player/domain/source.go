package domain

// TrackSource represents the catalog a track was found on.
type TrackSource string

const (
	TrackSourceYouTube TrackSource = "youtube"
	TrackSourceSpotify TrackSource = "spotify"
)

// Color returns the brand color used for embeds about tracks from this source.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceSpotify:
		return 0x1DB954
	default:
		return 0xFF0000
	}
}

// IconURL returns a small logo for embed authors.
func (s TrackSource) IconURL() string {
	switch s {
	case TrackSourceSpotify:
		return "https://www.google.com/s2/favicons?domain=spotify.com&sz=64"
	default:
		return "https://www.google.com/s2/favicons?domain=youtube.com&sz=64"
	}
}
