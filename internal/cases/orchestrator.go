package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/courtfetch/internal/captcha"
	"github.com/JaimeStill/courtfetch/internal/courts"
)

const mismatchReason = "Invalid CAPTCHA. Please try again."

// Orchestrator runs the search protocol for one client. It holds at most one
// outstanding challenge and is safe for concurrent use.
type Orchestrator struct {
	courts *courts.Registry
	source Source
	policy captcha.Policy
	slot   *captcha.Slot
	now    func() time.Time
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the clock used to validate filing years.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator in the idle state.
func New(registry *courts.Registry, source Source, policy captcha.Policy, slot *captcha.Slot, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		courts: registry,
		source: source,
		policy: policy,
		slot:   slot,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pending reports whether the orchestrator is waiting on a challenge solution.
func (o *Orchestrator) Pending() bool {
	return o.slot.Pending()
}

// Challenge returns the unexpired challenge awaiting a solution, if any.
func (o *Orchestrator) Challenge() (captcha.Challenge, bool) {
	return o.slot.Current()
}

// Refresh swaps the issued challenge for one with a different code. It fails
// with ErrNoPendingChallenge when no challenge was issued or the last one was
// already consumed.
func (o *Orchestrator) Refresh() (captcha.Challenge, error) {
	ch, err := o.slot.Refresh()
	if err != nil {
		return captcha.Challenge{}, fmt.Errorf("%w: %w", ErrNoPendingChallenge, err)
	}
	return ch, nil
}

// Search validates q and either issues a challenge, judges solution against
// the pending one, or fetches the case. Invalid queries are returned as an
// error with no state change. Challenge mismatches and source failures are
// terminal results with Status error.
func (o *Orchestrator) Search(ctx context.Context, q Query, solution *string) (*Result, error) {
	court, err := q.Validate(o.courts, o.now())
	if err != nil {
		return nil, err
	}

	if solution == nil {
		if o.policy.Required(q.CaseType, court.CaptchaStrategy) {
			ch := o.slot.Issue()
			return &Result{Status: StatusChallenge, Challenge: &ch}, nil
		}
	} else if fresh, err := o.slot.Verify(*solution); err != nil {
		return &Result{
			Status:    StatusError,
			Reason:    mismatchReason,
			Err:       fmt.Errorf("%w: %w", ErrChallengeMismatch, err),
			Challenge: fresh,
		}, nil
	}

	rec, err := o.source.Fetch(ctx, q)
	if err != nil {
		return &Result{
			Status: StatusError,
			Reason: upstreamReason(err),
			Err:    fmt.Errorf("%w: %w", ErrUpstream, err),
		}, nil
	}

	return &Result{Status: StatusOK, Data: rec}, nil
}

func upstreamReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The court website did not respond in time. Please try again."
	case errors.Is(err, context.Canceled):
		return "The search was cancelled."
	default:
		return fmt.Sprintf("Failed to fetch case details: %v", err)
	}
}
