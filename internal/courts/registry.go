package courts

import (
	"fmt"
	"log/slog"
	"slices"
)

// Registry is an immutable lookup over the court catalogue. It is safe for
// concurrent use without locking.
type Registry struct {
	courts []Court
	byName map[string]int
}

// NewRegistry validates list and builds a Registry. Order is preserved.
func NewRegistry(list []Court) (*Registry, error) {
	r := &Registry{
		courts: make([]Court, 0, len(list)),
		byName: make(map[string]int, len(list)),
	}

	for _, c := range list {
		if err := validate(c); err != nil {
			return nil, err
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate court %q", ErrInvalidConfig, c.Name)
		}

		c.CaseTypes = slices.Clone(c.CaseTypes)
		r.byName[c.Name] = len(r.courts)
		r.courts = append(r.courts, c)
	}

	return r, nil
}

// Lookup returns the court with the given name.
func (r *Registry) Lookup(name string) (Court, error) {
	i, ok := r.byName[name]
	if !ok {
		return Court{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r.courts[i], nil
}

// All returns every court in catalogue order.
func (r *Registry) All() []Court {
	out := make([]Court, len(r.courts))
	for i, c := range r.courts {
		c.CaseTypes = slices.Clone(c.CaseTypes)
		out[i] = c
	}
	return out
}

// Handler returns the HTTP handler over this registry.
func (r *Registry) Handler(logger *slog.Logger) *Handler {
	return NewHandler(r, logger)
}

func validate(c Court) error {
	if c.Name == "" {
		return fmt.Errorf("%w: court name required", ErrInvalidConfig)
	}
	if len(c.CaseTypes) == 0 {
		return fmt.Errorf("%w: %s has no case types", ErrInvalidConfig, c.Name)
	}
	if !c.CaptchaStrategy.Valid() {
		return fmt.Errorf("%w: %s has unknown captcha strategy %q", ErrInvalidConfig, c.Name, c.CaptchaStrategy)
	}
	return nil
}
