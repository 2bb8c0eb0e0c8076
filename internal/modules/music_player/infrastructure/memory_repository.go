package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// MemoryRepository is an in-memory implementation of GuildStateRepository.
// States live for the lifetime of the process.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[snowflake.ID]*domain.GuildState
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states: make(map[snowflake.ID]*domain.GuildState),
	}
}

// Get returns the GuildState for the given guild, or nil if not exists.
func (r *MemoryRepository) Get(guildID snowflake.ID) *domain.GuildState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.states[guildID]
}

// GetOrCreate returns the GuildState for the given guild, creating it under
// the write lock so racing first calls observe one instance.
func (r *MemoryRepository) GetOrCreate(guildID snowflake.ID) *domain.GuildState {
	if state := r.Get(guildID); state != nil {
		return state
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.states[guildID]; ok {
		return state
	}

	state := domain.NewGuildState(guildID)
	r.states[guildID] = state
	return state
}

// Count returns the number of guild states (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.states)
}

// Ensure MemoryRepository implements GuildStateRepository.
var _ domain.GuildStateRepository = (*MemoryRepository)(nil)
