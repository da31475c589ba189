package cases

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
)

// SessionCookie names the cookie that binds a client to its orchestrator.
const SessionCookie = "courtfetch_session"

type session struct {
	orch     *Orchestrator
	lastSeen time.Time
}

// Sessions gives each client its own Orchestrator, keyed by cookie, and
// evicts sessions idle longer than the configured TTL. A client only gets a
// session once it holds a challenge.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Orchestrator
	ttl      time.Duration
	max      int
	now      func() time.Time
	logger   *slog.Logger
}

// SessionOption customises a session table.
type SessionOption func(*Sessions)

// WithMaxSessions caps the number of live sessions. When the table is full
// the least recently seen session is dropped to admit a new one. Non-positive
// n leaves the table unbounded.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) { s.max = n }
}

// WithSessionClock overrides the clock used for idle tracking.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Sessions) { s.now = now }
}

// NewSessions creates a session table. factory builds an orchestrator for
// each new client. A zero ttl keeps sessions until the cap displaces them.
func NewSessions(factory func() *Orchestrator, ttl time.Duration, logger *slog.Logger, opts ...SessionOption) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With("system", "sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the orchestrator bound to id and marks the session active.
func (s *Sessions) Lookup(id string) (*Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.orch, true
}

// Adopt stores orch under a new session id and returns the id.
func (s *Sessions) Adopt(orch *Orchestrator) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		s.dropOldest()
	}

	id := uuid.NewString()
	s.sessions[id] = &session{orch: orch, lastSeen: s.now()}
	return id
}

// Resolve returns the orchestrator for the request's session cookie. A
// request without a live session gets a detached orchestrator and known is
// false; Bind keeps it once it is worth remembering.
func (s *Sessions) Resolve(r *http.Request) (orch *Orchestrator, known bool) {
	if orch, ok := s.current(r); ok {
		return orch, true
	}
	return s.factory(), false
}

// Bind adopts orch and sets the session cookie on w.
func (s *Sessions) Bind(w http.ResponseWriter, orch *Orchestrator) string {
	id := s.Adopt(orch)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Sessions) current(r *http.Request) (*Orchestrator, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return s.Lookup(c.Value)
}

func (s *Sessions) dropOldest() {
	var (
		oldest string
		seen   time.Time
	)
	for id, sess := range s.sessions {
		if oldest == "" || sess.lastSeen.Before(seen) {
			oldest, seen = id, sess.lastSeen
		}
	}
	delete(s.sessions, oldest)
	s.logger.Warn("session cap reached, dropped oldest", "max", s.max, "last_seen", seen)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions idle longer than the TTL and returns how many were removed.
func (s *Sessions) Evict() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	var n int
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Start runs the eviction loop until the coordinator shuts down.
func (s *Sessions) Start(lc *lifecycle.Coordinator) {
	if s.ttl <= 0 {
		return
	}

	interval := max(s.ttl/2, time.Second)
	lc.OnShutdown(func() {
		s.janitor(lc.Context(), interval)
	})
}

func (s *Sessions) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session janitor stopped", "sessions", s.Len())
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}
