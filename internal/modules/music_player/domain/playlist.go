package domain

// Playlist is an expanded remote playlist, tracks in source order.
type Playlist struct {
	Name   string
	Tracks []*Track
}

// QueuedTrack describes where an enqueued track landed.
type QueuedTrack struct {
	Track          *Track
	Position       int  // 0 = now playing, 1 = next up, ...
	StartedPlaying bool // the enqueue found the guild idle and started this track
}
