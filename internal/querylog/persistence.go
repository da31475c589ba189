package querylog

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/courtfetch/pkg/pagination"
)

// Persistence is the durable surface behind a Store.
type Persistence interface {
	// Load returns every stored entry in the order it was saved.
	Load(ctx context.Context) ([]Entry, error)
	// Save appends entries. Entries whose ID is already stored are ignored.
	Save(ctx context.Context, entries []Entry) error
	// Clear removes every stored entry.
	Clear(ctx context.Context) error
}

// Searcher is implemented by persistence surfaces that filter and page
// history themselves, newest first.
type Searcher interface {
	Search(ctx context.Context, filters Filters, page pagination.PageRequest) (pagination.PageResult[Entry], error)
}

type memory struct {
	mu      sync.Mutex
	entries []Entry
	ids     map[uuid.UUID]struct{}
}

// NewMemory returns a process-local Persistence, used when no database is configured.
func NewMemory() Persistence {
	return &memory{ids: make(map[uuid.UUID]struct{})}
}

func (m *memory) Load(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries), nil
}

func (m *memory) Save(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if _, ok := m.ids[e.ID]; ok {
			continue
		}
		m.ids[e.ID] = struct{}{}
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	clear(m.ids)
	return nil
}
