package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/courtfetch/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("COURTFETCH_DB_DRIVER", "none")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestRouterHealthAndReadiness(t *testing.T) {
	cfg := testConfig(t)

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	router := buildRouter(srv.infra)
	srv.modules.Mount(router)

	get := func(path string) (int, map[string]string) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		var body map[string]string
		json.NewDecoder(rec.Body).Decode(&body)
		return rec.Code, body
	}

	if code, _ := get("/healthz"); code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", code)
	}
	if code, body := get("/readyz"); code != http.StatusServiceUnavailable || body["status"] != "not ready" {
		t.Errorf("readyz before start = %d %v", code, body)
	}

	srv.modules.Start(srv.infra.Lifecycle)
	if err := srv.infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown(time.Second) })

	if code, _ := get("/readyz"); code != http.StatusOK {
		t.Errorf("readyz after start = %d, want 200", code)
	}
	if code, _ := get("/api/courts"); code != http.StatusOK {
		t.Errorf("api courts = %d, want 200", code)
	}
}
