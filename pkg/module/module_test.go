package module_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/courtfetch/pkg/module"
)

func echoPath() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	})
}

func TestNewValidatesPrefix(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{"valid", "/api", false},
		{"empty", "", true},
		{"root only", "/", true},
		{"no leading slash", "api", true},
		{"multi-level", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := module.New(tt.prefix, echoPath())
			if tt.wantErr {
				if !errors.Is(err, module.ErrInvalidPrefix) {
					t.Errorf("New(%q) error = %v, want ErrInvalidPrefix", tt.prefix, err)
				}
				return
			}
			if err != nil {
				t.Errorf("New(%q) unexpected error: %v", tt.prefix, err)
			}
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	api, err := module.New("/api", echoPath())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var tagged bool
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tagged = true
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "native")
	})

	tests := []struct {
		name       string
		path       string
		wantBody   string
		wantStatus int
		wantModule bool
	}{
		{"module subpath", "/api/courts", "/courts", http.StatusOK, true},
		{"module root", "/api", "/", http.StatusOK, true},
		{"trailing slash trimmed", "/api/history/", "/history", http.StatusOK, true},
		{"native fallback", "/healthz", "native", http.StatusOK, false},
		{"unknown path", "/nope", "404 page not found\n", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagged = false
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tagged != tt.wantModule {
				t.Errorf("module middleware ran = %v, want %v", tagged, tt.wantModule)
			}
		})
	}
}

func TestRouterPrefixes(t *testing.T) {
	router := module.NewRouter()
	for _, p := range []string{"/web", "/api"} {
		m, err := module.New(p, echoPath())
		if err != nil {
			t.Fatalf("New(%q): %v", p, err)
		}
		router.Mount(m)
	}

	got := router.Prefixes()
	if len(got) != 2 || got[0] != "/api" || got[1] != "/web" {
		t.Errorf("Prefixes() = %v, want [/api /web]", got)
	}
}
