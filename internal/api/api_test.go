package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/courtfetch/internal/api"
	"github.com/JaimeStill/courtfetch/internal/captcha"
	"github.com/JaimeStill/courtfetch/internal/cases"
	"github.com/JaimeStill/courtfetch/internal/config"
	"github.com/JaimeStill/courtfetch/internal/infrastructure"
	"github.com/JaimeStill/courtfetch/internal/querylog"
)

// counting yields 0, 1, 2, ... modulo n, so the first code is "ABCDE".
type counting struct{ n atomic.Int64 }

func (c *counting) IntN(n int) int    { return int(c.n.Add(1)-1) % n }
func (c *counting) Float64() float64 { return 0 }

type harness struct {
	t       *testing.T
	handler http.Handler
	api     *api.API
	cookie  *http.Cookie
}

func newHarness(t *testing.T, src cases.Source) *harness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[database]\ndriver = \"none\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	infra, err := infrastructure.NewWithOutput(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}

	a, err := api.New(cfg, infra,
		api.WithSource(src),
		api.WithPolicy(captcha.Always),
		api.WithRandom(&counting{}),
	)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	a.Start(infra.Lifecycle)
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })

	return &harness{t: t, handler: a.Module, api: a}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("User-Agent", "courtfetch-api-test")
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == cases.SessionCookie {
			h.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

var delhi = cases.Query{
	CaseType:   "Civil Appeal",
	CaseNumber: "1234",
	FilingYear: "2023",
	Court:      "Delhi High Court",
}

func recordSource() cases.Source {
	return cases.SourceFunc(func(ctx context.Context, q cases.Query) (*cases.Record, error) {
		return &cases.Record{
			CaseType:   q.CaseType,
			CaseNumber: q.CaseNumber + "/" + q.FilingYear,
			FilingYear: q.FilingYear,
			Court:      q.Court,
			Status:     "Pending",
			Snapshot: &cases.Snapshot{
				SourceURL:   q.Court + "/case/" + q.CaseNumber + "/" + q.FilingYear,
				RetrievedAt: time.Now().UTC(),
				Method:      "test",
			},
		}, nil
	})
}

func TestSearchFlowRecordsHistory(t *testing.T) {
	h := newHarness(t, recordSource())

	rec := h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi})
	if rec.Code != http.StatusOK {
		t.Fatalf("challenge status = %d: %s", rec.Code, rec.Body)
	}
	challenge := decode[cases.Response](t, rec)
	if challenge.Status != cases.StatusChallenge {
		t.Fatalf("status = %q, want challenge", challenge.Status)
	}
	if !strings.Contains(challenge.ImageReference, "ABCDE") || !strings.HasPrefix(challenge.SessionID, "sess_") {
		t.Errorf("challenge = %+v", challenge)
	}
	if h.cookie == nil {
		t.Fatal("session cookie not set")
	}

	solution := " abcde "
	rec = h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi, Solution: &solution})
	ok := decode[cases.Response](t, rec)
	if ok.Status != cases.StatusOK || ok.Data == nil {
		t.Fatalf("response = %+v, want ok with data", ok)
	}
	if ok.Data.CaseNumber != "1234/2023" {
		t.Errorf("case number = %q", ok.Data.CaseNumber)
	}

	history := decode[querylog.History](t, h.do("GET", "/api/history", nil))
	if len(history.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(history.Entries))
	}
	entry := history.Entries[0]
	if !entry.Success || entry.Snapshot == nil || entry.Snapshot.SourceURL != "Delhi High Court/case/1234/2023" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.UserAgent != "courtfetch-api-test" || entry.ClientAddr != "192.0.2.1" {
		t.Errorf("client = (%q, %q), want the request's user agent and host", entry.UserAgent, entry.ClientAddr)
	}

	filtered := decode[querylog.HistoryPage](t, h.do("GET", "/api/history/page?success=false", nil))
	if filtered.Total != 0 {
		t.Errorf("failures = %d, want 0", filtered.Total)
	}

	stats := decode[querylog.Stats](t, h.do("GET", "/api/history/stats", nil))
	if stats.TotalQueries != 1 || stats.SuccessRate != 100 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMismatchIsRecordedAsFailure(t *testing.T) {
	h := newHarness(t, recordSource())

	h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi})

	wrong := "ZZZZZ"
	res := decode[cases.Response](t, h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi, Solution: &wrong}))
	if res.Status != cases.StatusError || res.ImageReference == "" {
		t.Fatalf("response = %+v, want error with fresh challenge", res)
	}

	history := decode[querylog.History](t, h.do("GET", "/api/history", nil))
	if len(history.Entries) != 1 || history.Entries[0].Success {
		t.Fatalf("entries = %+v, want one failure", history.Entries)
	}
	if history.Entries[0].Error != "Invalid CAPTCHA. Please try again." {
		t.Errorf("error = %q", history.Entries[0].Error)
	}
}

func TestValidationIsNotRecorded(t *testing.T) {
	h := newHarness(t, recordSource())

	bad := delhi
	bad.CaseNumber = "12A4"
	if rec := h.do("POST", "/api/cases/search", cases.SearchRequest{Query: bad}); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	history := decode[querylog.History](t, h.do("GET", "/api/history", nil))
	if len(history.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(history.Entries))
	}
}

func TestReferenceAndDisabledRoutes(t *testing.T) {
	h := newHarness(t, recordSource())

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"courts", "GET", "/api/courts", http.StatusOK},
		{"court", "GET", "/api/courts/Faridabad%20District%20Court", http.StatusOK},
		{"unknown court", "GET", "/api/courts/Nowhere", http.StatusNotFound},
		{"history page", "GET", "/api/history/page?page=1&page_size=5", http.StatusOK},
		{"filtered history", "GET", "/api/history/page?court=Delhi%20High%20Court&success=true", http.StatusOK},
		{"challenge status", "GET", "/api/cases/challenge", http.StatusOK},
		{"refresh without session", "POST", "/api/cases/challenge", http.StatusConflict},
		{"bad limit", "GET", "/api/history?limit=zero", http.StatusBadRequest},
		{"documents disabled", "GET", "/api/documents/any.pdf", http.StatusServiceUnavailable},
		{"unknown route", "GET", "/api/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := h.do(tt.method, tt.path, nil); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRecoverWrapsHandlers(t *testing.T) {
	h := newHarness(t, cases.SourceFunc(func(context.Context, cases.Query) (*cases.Record, error) {
		panic("source exploded")
	}))

	h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi})
	solution := "ABCDE"
	rec := h.do("POST", "/api/cases/search", cases.SearchRequest{Query: delhi, Solution: &solution})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
