package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackOrigin records whether a track was requested on its own or came from a playlist.
type TrackOrigin int

const (
	OriginSingle TrackOrigin = iota
	OriginPlaylist
)

// Track represents a playable, or still to be resolved, audio track.
//
// A track either carries a URL on the video catalog or a deferred SearchQuery
// that is looked up on the video catalog right before playback. ResolveURL turns
// the latter into the former.
type Track struct {
	Title        string
	URL          string
	SearchQuery  string
	Author       string
	Duration     time.Duration
	IsLive       bool
	ThumbnailURL string
	Source       TrackSource
	Origin       TrackOrigin
	RequesterID  snowflake.ID // Discord user who added the track
	EnqueuedAt   time.Time
}

// NeedsLookup reports whether the track still has to be resolved through its search query.
func (t *Track) NeedsLookup() bool {
	return t.URL == "" && t.SearchQuery != ""
}

// ResolveURL stores the URL found for a deferred track and drops the query.
func (t *Track) ResolveURL(url string) {
	t.URL = url
	t.SearchQuery = ""
}

// Stamp attaches the requester and enqueue time.
func (t *Track) Stamp(requesterID snowflake.ID, at time.Time) {
	t.RequesterID = requesterID
	t.EnqueuedAt = at.UTC()
}

// IsValid returns true if the track can be played or looked up.
func (t *Track) IsValid() bool {
	return t.Title != "" && (t.URL != "" || t.SearchQuery != "")
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.IsLive {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
