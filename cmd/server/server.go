package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
	logger  *slog.Logger
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"database", cfg.Database.Driver,
		"storage", cfg.Storage.Enabled(),
		"modules", router.Prefixes(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
		logger:  infra.Logger,
	}, nil
}

// Start brings up infrastructure first, then the domain hooks that depend
// on it, then the listener.
func (s *Server) Start() error {
	s.logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
		return fmt.Errorf("infrastructure startup: %w", err)
	}

	s.modules.Start(s.infra.Lifecycle)

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.logger.Error("startup failed", "error", err)
			return
		}
		s.logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
