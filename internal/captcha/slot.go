package captcha

import (
	"sync"
	"time"
)

// Slot holds at most one outstanding challenge. Issuing replaces whatever
// was pending, and every verification consumes it.
type Slot struct {
	mu      sync.Mutex
	current *Challenge
	gen     *Generator
	ttl     time.Duration
	now     func() time.Time
}

// NewSlot creates an empty slot issuing challenges from gen. A zero ttl
// disables expiry. A nil now uses time.Now.
func NewSlot(gen *Generator, ttl time.Duration, now func() time.Time) *Slot {
	if now == nil {
		now = time.Now
	}
	return &Slot{gen: gen, ttl: ttl, now: now}
}

// Issue replaces any pending challenge with a fresh one and returns it.
func (s *Slot) Issue() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace()
}

// Verify consumes the pending challenge and judges solution against it.
// On success the slot is left empty and fresh is nil. Otherwise a new
// challenge whose code differs from the consumed one is issued, and fresh
// carries it alongside ErrNoChallenge, ErrExpired or ErrMismatch.
func (s *Slot) Verify(solution string) (fresh *Challenge, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cur := s.current; {
	case cur == nil:
		err = ErrNoChallenge
	case cur.Expired(s.ttl, s.now()):
		err = ErrExpired
	case !cur.Matches(solution):
		err = ErrMismatch
	default:
		s.current = nil
		return nil, nil
	}

	ch := s.replace()
	return &ch, err
}

// Pending reports whether an unexpired challenge is outstanding.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.Expired(s.ttl, s.now())
}

// Current returns the outstanding challenge while it is unexpired.
func (s *Slot) Current() (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Expired(s.ttl, s.now()) {
		return Challenge{}, false
	}
	return *s.current, true
}

// Refresh replaces an issued challenge, expired or not, with a new code.
// An empty slot yields ErrNoChallenge and stays empty.
func (s *Slot) Refresh() (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Challenge{}, ErrNoChallenge
	}
	return s.replace(), nil
}

func (s *Slot) replace() Challenge {
	var previous string
	if s.current != nil {
		previous = s.current.Answer
	}

	ch := s.gen.Generate(previous)
	ch.IssuedAt = s.now()
	s.current = &ch
	return ch
}
