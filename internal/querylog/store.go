package querylog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/pagination"
)

// Store is the query log. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	entries    map[uuid.UUID]Entry
	order      []uuid.UUID
	pending    []uuid.UUID
	needsClear bool

	persist Persistence
	logger  *slog.Logger
	now     func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store mirrored to p.
func New(p Persistence, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		entries: make(map[uuid.UUID]Entry),
		persist: p,
		logger:  logger.With("system", "querylog"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads persisted history once the other startup hooks have run.
// A failed load leaves the store empty and is reported as a warning only.
func (s *Store) Start(lc *lifecycle.Coordinator) {
	lc.OnStartup("querylog", func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.sync(ctx) == nil {
			s.logger.Info("query log loaded", "entries", len(s.order))
		}
		return nil
	})
}

// Append records a new outcome. The entry is always kept in memory. If the
// persistence surface fails, the returned error is a *PersistenceWarning and
// the entry stays queued for the next Flush.
func (s *Store) Append(ctx context.Context, cmd AppendCommand) (Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	e := Entry{
		ID:         id,
		CaseType:   cmd.CaseType,
		CaseNumber: cmd.CaseNumber,
		FilingYear: cmd.FilingYear,
		Court:      cmd.Court,
		Timestamp:  s.now().UTC(),
		Success:    cmd.Success,
		Error:      cmd.Error,
		Snapshot:   cmd.Snapshot,
		UserAgent:  cmd.UserAgent,
		ClientAddr: cmd.ClientAddr,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	s.pending = append(s.pending, e.ID)

	if w := s.flush(ctx); w != nil {
		return e, w
	}
	return e, nil
}

// Flush retries any queued clear and unsaved entries. It returns the number
// of entries still pending and a *PersistenceWarning if the retry failed.
func (s *Store) Flush(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.flush(ctx); w != nil {
		return len(s.pending), w
	}
	return 0, nil
}

// Pending returns the number of entries not yet persisted.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Recent returns up to limit entries matching filters, newest first. Entries
// with equal timestamps are ordered by most recent insertion. A non-positive
// limit returns every match.
func (s *Store) Recent(ctx context.Context, filters Filters, limit int) History {
	s.mu.Lock()
	defer s.mu.Unlock()

	warning := s.syncWarning(ctx)
	entries := s.newestFirst(filters)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return History{Entries: entries, Warning: warning}
}

// HistoryPage is a page of entries, newest first.
type HistoryPage struct {
	pagination.PageResult[Entry]
	Warning string `json:"warning,omitempty"`
}

// Page returns one page of entries matching filters, newest first. req must
// be normalized. A Searcher persistence answers the page directly once
// queued writes are flushed; otherwise, or when it fails, the page is cut
// from memory.
func (s *Store) Page(ctx context.Context, filters Filters, req pagination.PageRequest) HistoryPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var warning string
	if searcher, ok := s.persist.(Searcher); ok {
		page, w := s.search(ctx, searcher, filters, req)
		if w == nil {
			return HistoryPage{PageResult: page}
		}
		warning = w.Error()
	} else {
		warning = s.syncWarning(ctx)
	}

	return HistoryPage{
		PageResult: pagination.Slice(s.newestFirst(filters), req),
		Warning:    warning,
	}
}

// Stats recomputes statistics over every entry.
func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	warning := s.syncWarning(ctx)
	stats := computeStats(s.inOrder())
	stats.Warning = warning
	return stats
}

// Clear discards every entry. Memory is cleared unconditionally; if the
// persistence surface fails, the clear is retried on the next Flush or
// read and a *PersistenceWarning is returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	s.order = nil
	s.pending = nil
	s.needsClear = true

	if w := s.flush(ctx); w != nil {
		return w
	}
	s.logger.Info("query log cleared")
	return nil
}

func (s *Store) flush(ctx context.Context) *PersistenceWarning {
	if s.needsClear {
		if err := s.persist.Clear(ctx); err != nil {
			return s.warn("clear", err)
		}
		s.needsClear = false
	}

	if len(s.pending) == 0 {
		return nil
	}

	batch := make([]Entry, len(s.pending))
	for i, id := range s.pending {
		batch[i] = s.entries[id]
	}
	if err := s.persist.Save(ctx, batch); err != nil {
		return s.warn("save", err)
	}
	s.pending = nil
	return nil
}

// sync flushes outstanding writes, then replaces memory with the persisted
// history. Any failure leaves memory as it was.
func (s *Store) sync(ctx context.Context) *PersistenceWarning {
	if w := s.flush(ctx); w != nil {
		return w
	}

	loaded, err := s.persist.Load(ctx)
	if err != nil {
		return s.warn("load", err)
	}

	entries := make(map[uuid.UUID]Entry, len(loaded))
	order := make([]uuid.UUID, 0, len(loaded))
	for _, e := range loaded {
		if _, dup := entries[e.ID]; dup {
			continue
		}
		entries[e.ID] = e
		order = append(order, e.ID)
	}

	s.entries = entries
	s.order = order
	return nil
}

func (s *Store) search(ctx context.Context, searcher Searcher, filters Filters, req pagination.PageRequest) (pagination.PageResult[Entry], *PersistenceWarning) {
	if w := s.flush(ctx); w != nil {
		return pagination.PageResult[Entry]{}, w
	}

	page, err := searcher.Search(ctx, filters, req)
	if err != nil {
		return pagination.PageResult[Entry]{}, s.warn("search", err)
	}
	return page, nil
}

func (s *Store) syncWarning(ctx context.Context) string {
	if w := s.sync(ctx); w != nil {
		return w.Error()
	}
	return ""
}

func (s *Store) warn(op string, err error) *PersistenceWarning {
	w := &PersistenceWarning{Op: op, Err: err}
	s.logger.Warn("query log persistence degraded", "op", op, "pending", len(s.pending), "error", err)
	return w
}

func (s *Store) inOrder() []Entry {
	out := make([]Entry, len(s.order))
	for i, id := range s.order {
		out[i] = s.entries[id]
	}
	return out
}

func (s *Store) newestFirst(filters Filters) []Entry {
	out := slices.DeleteFunc(s.inOrder(), func(e Entry) bool {
		return !filters.Matches(e)
	})
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}
