// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/infrastructure"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/middleware"
	"github.com/JaimeStill/courtfetch/pkg/module"
)

// API is the mounted module together with the domain behind it.
type API struct {
	Module *module.Module
	Domain *Domain
}

// New creates the API module with all domain handlers and middleware.
func New(cfg *config.Config, infra *infrastructure.Infrastructure, opts ...Option) (*API, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime, opts...)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return &API{Module: m, Domain: domain}, nil
}

// Start registers the domain lifecycle hooks.
func (a *API) Start(lc *lifecycle.Coordinator) {
	a.Domain.Start(lc)
}
