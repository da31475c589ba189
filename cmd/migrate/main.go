package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "COURTFETCH_DB_DSN"

var errUsage = errors.New("no action given")

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		dsn     = fs.String("dsn", "", "postgres connection URL (default: built from config)")
		up      = fs.Bool("up", false, "Run all up migrations")
		down    = fs.Bool("down", false, "Run all down migrations")
		steps   = fs.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = fs.Bool("version", false, "Print current migration version")
		force   = fs.Int("force", -1, "Force set version (use with caution)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	forceSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if !*up && !*down && !*version && !forceSet && *steps == 0 {
		fmt.Fprintln(out, "usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		fs.PrintDefaults()
		return errUsage
	}

	target, err := resolveDSN(*dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("get version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		fmt.Fprintf(out, "forced to version %d\n", *force)
	case *up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("up migrations: %w", err)
		}
		fmt.Fprintln(out, "migrations applied")
	case *down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("down migrations: %w", err)
		}
		fmt.Fprintln(out, "migrations reverted")
	default:
		if err := ignoreNoChange(m.Steps(*steps)); err != nil {
			return fmt.Errorf("step migrations: %w", err)
		}
		fmt.Fprintf(out, "applied %d migration steps\n", *steps)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// resolveDSN prefers the flag, then COURTFETCH_DB_DSN, then the postgres
// settings of the service configuration.
func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Database.Driver != database.DriverPostgres {
		return "", fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}
	return postgresURL(&cfg.Database), nil
}

func postgresURL(cfg *database.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}
