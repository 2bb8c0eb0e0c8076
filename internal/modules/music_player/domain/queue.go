package domain

// Queue is a FIFO of pending tracks. Playlists are appended in source order
// and the head is always consumed first.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]*Track, 0),
	}
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if nothing is pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Push appends tracks to the tail, preserving their order.
func (q *Queue) Push(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Pop removes and returns the head, or nil if the queue is empty.
func (q *Queue) Pop() *Track {
	if q.IsEmpty() {
		return nil
	}

	head := q.tracks[0]
	q.tracks[0] = nil
	q.tracks = q.tracks[1:]
	return head
}

// List returns a copy of the pending tracks in play order.
func (q *Queue) List() []*Track {
	result := make([]*Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all pending tracks.
func (q *Queue) Clear() {
	q.tracks = make([]*Track, 0)
}
