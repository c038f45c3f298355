// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development, tests, and single-process deployments where losing
// sessions on restart is acceptable.
//
// Characteristics:
//   - Stores JSON-encoded state keyed by session id, so callers never share
//     memory with the store.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/wordle/apps/session-server/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions map
	sessions map[string][]byte // keyed by session id
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string][]byte)}
}

// Save adds or replaces the state in the map.
func (m *memory) Save(_ context.Context, id string, st *game.State) error {
	b, err := encode(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = b
	return nil
}

// Load decodes the stored state for id or returns ErrNotFound.
func (m *memory) Load(_ context.Context, id string) (*game.State, error) {
	m.mu.RLock()
	b, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(b)
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Close() error { return nil }
