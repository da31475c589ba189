package main

import (
	"net/http"

	"github.com/JaimeStill/courtfetch/internal/api"
	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/infrastructure"
	"github.com/JaimeStill/courtfetch/pkg/handlers"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/module"
)

type Modules struct {
	API *api.API
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.New(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
}

func (m *Modules) Start(lc *lifecycle.Coordinator) {
	m.API.Start(lc)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
