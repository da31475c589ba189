package cases

import (
	"context"
	"time"
)

// Source fetches case records from a court. Implementations may be slow and
// may fail; errors are surfaced to the user as the failure reason.
type Source interface {
	Fetch(ctx context.Context, q Query) (*Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q Query) (*Record, error)

func (f SourceFunc) Fetch(ctx context.Context, q Query) (*Record, error) {
	return f(ctx, q)
}

// WithTimeout bounds every Fetch on src by d. A non-positive d returns src unchanged.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return SourceFunc(func(ctx context.Context, q Query) (*Record, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return src.Fetch(ctx, q)
	})
}
