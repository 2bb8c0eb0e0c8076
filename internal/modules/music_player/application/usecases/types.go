package usecases

import (
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// QueuedTrack is re-exported so presentation can render queue entries
// without importing domain directly.
type QueuedTrack = domain.QueuedTrack
