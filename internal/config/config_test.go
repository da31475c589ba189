package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/courts"
	"github.com/JaimeStill/courtfetch/pkg/database"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"addr", cfg.Server.Addr(), "0.0.0.0:8080"},
		{"shutdown", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
		{"driver", cfg.Database.Driver, database.DriverSQLite},
		{"storage disabled", cfg.Storage.Enabled(), false},
		{"base path", cfg.API.BasePath, "/api"},
		{"upload size", cfg.API.MaxUploadSizeBytes(), int64(25 << 20)},
		{"inspect size", cfg.API.MaxInspectSizeBytes(), int64(10 << 20)},
		{"baseline", cfg.Cases.BaselineValue(), 0.3},
		{"code length", cfg.Cases.CodeLength, 5},
		{"challenge ttl", cfg.Cases.ChallengeTTLDuration(), 5 * time.Minute},
		{"session ttl", cfg.Cases.SessionTTLDuration(), 30 * time.Minute},
		{"source timeout", cfg.Cases.SourceTimeoutDuration(), 10 * time.Second},
		{"max sessions", cfg.Cases.MaxSessions, config.DefaultMaxSessions},
		{"sensitive types", len(cfg.Cases.SensitiveCaseTypes), 2},
		{"courts", len(cfg.Courts), len(courts.Defaults())},
		{"log level", cfg.Level(), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadFileAndOverlay(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "config.toml", `
shutdown_timeout = "10s"

[server]
port = 9090

[cases]
baseline = 0.0
sensitive_case_types = ["Writ Petition"]

[[courts]]
name = "Test Court"
case_types = ["Writ Petition", "Civil Suit"]
`)
	writeFile(t, dir, "config.staging.toml", `
[server]
port = 9191

[database]
driver = "none"
`)
	t.Setenv(config.EnvCourtfetchEnv, "staging")

	cfg, err := config.LoadFrom(base)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want overlay 9191", cfg.Server.Port)
	}
	if cfg.Database.Enabled() {
		t.Error("overlay should disable the database")
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("shutdown = %v, want 10s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Cases.BaselineValue() != 0 {
		t.Errorf("baseline = %v, want explicit 0", cfg.Cases.BaselineValue())
	}
	if len(cfg.Courts) != 1 || cfg.Courts[0].CaptchaStrategy != courts.CaptchaManual {
		t.Errorf("courts = %+v, want one manual court", cfg.Courts)
	}
	if cfg.Env() != "staging" {
		t.Errorf("env = %q, want staging", cfg.Env())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvServerPort, "7070")
	t.Setenv(config.EnvCasesBaseline, "1")
	t.Setenv(config.EnvCasesSensitiveCaseTypes, "Civil Appeal, Bail Application ,")
	t.Setenv(config.EnvCasesChallengeTTL, "90s")
	t.Setenv(config.EnvCasesSourceFailureRate, "0.25")
	t.Setenv(config.EnvCasesMaxSessions, "50")
	t.Setenv("COURTFETCH_DB_DRIVER", "none")
	t.Setenv("COURTFETCH_CORS_ENABLED", "true")

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Cases.BaselineValue() != 1 {
		t.Errorf("baseline = %v", cfg.Cases.BaselineValue())
	}
	if got := cfg.Cases.SensitiveCaseTypes; len(got) != 2 || got[1] != "Bail Application" {
		t.Errorf("sensitive = %v", got)
	}
	if cfg.Cases.ChallengeTTLDuration() != 90*time.Second {
		t.Errorf("challenge ttl = %v", cfg.Cases.ChallengeTTLDuration())
	}
	if cfg.Cases.SourceFailureRate != 0.25 {
		t.Errorf("failure rate = %v", cfg.Cases.SourceFailureRate)
	}
	if cfg.Cases.MaxSessions != 50 {
		t.Errorf("max sessions = %d", cfg.Cases.MaxSessions)
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled")
	}
	if !cfg.API.CORS.Enabled {
		t.Error("cors should be enabled")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"baseline out of range", "[cases]\nbaseline = 1.5\n", "invalid baseline"},
		{"template without code", "[cases]\nimage_template = \"https://img.example/fixed.png\"\n", "missing {code} placeholder"},
		{"negative max sessions", "[cases]\nmax_sessions = -1\n", "invalid max_sessions"},
		{"bad challenge ttl", "[cases]\nchallenge_ttl = \"soon\"\n", "invalid challenge_ttl"},
		{"bad log level", "log_level = \"loud\"\n", "invalid log_level"},
		{"bad port", "[server]\nport = 70000\n", "invalid port"},
		{"bad upload size", "[api]\nmax_upload_size = \"lots\"\n", "invalid max_upload_size"},
		{"court without types", "[[courts]]\nname = \"Empty\"\n", "no case types"},
		{"unknown strategy", "[[courts]]\nname = \"X\"\ncase_types = [\"A\"]\ncaptcha_strategy = \"ocr\"\n", "unknown captcha strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.body)
			_, err := config.LoadFrom(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
