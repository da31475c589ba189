// Package module mounts prefix-scoped HTTP handlers, each with its own
// middleware stack, under a single top-level router.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/courtfetch/pkg/middleware"
)

// ErrInvalidPrefix is returned when a module prefix is not a single-level path.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module strips its prefix from incoming requests and delegates to an inner
// handler wrapped in the module's middleware.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
	handler    http.Handler
	once       sync.Once
}

// New creates a Module for a single-level prefix such as "/api".
func New(prefix string, router http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}, nil
}

// Prefix returns the module's mount path.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack. Middleware registered after
// the first request is served has no effect.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// ServeHTTP dispatches req to the inner router with the prefix removed.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, strip(req, m.prefix))
}

func strip(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL = new(url.URL)
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %s must start with /", ErrInvalidPrefix, prefix)
	case len(prefix) == 1 || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("%w: %s must be a single-level path", ErrInvalidPrefix, prefix)
	}
	return nil
}
