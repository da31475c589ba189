// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage) that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/querylog"
	"github.com/JaimeStill/courtfetch/pkg/database"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/storage"
)

// Infrastructure holds the core systems shared by all domain modules.
// Database and Storage are nil when their configuration disables them.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration, logging
// to stderr. It initializes all systems but does not start them; call Start
// separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit log destination.
func NewWithOutput(cfg *config.Config, out io.Writer) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level()}))

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
	}

	if cfg.Database.Enabled() {
		var opts []database.Option
		if cfg.Database.Driver == database.DriverSQLite {
			opts = append(opts, database.WithSchema(querylog.SQLiteSchema))
		}

		db, err := database.New(&cfg.Database, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	} else {
		logger.Warn("database disabled, query history will not survive restarts")
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	} else {
		logger.Info("document storage disabled")
	}

	return infra, nil
}

// Start registers the configured infrastructure systems with the lifecycle
// coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}
