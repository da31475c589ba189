package querylog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/courtfetch/internal/querylog"
	"github.com/JaimeStill/courtfetch/pkg/database"
	"github.com/JaimeStill/courtfetch/pkg/lifecycle"
	"github.com/JaimeStill/courtfetch/pkg/pagination"
)

func sqliteRepository(t *testing.T) querylog.Persistence {
	t.Helper()

	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "history.db")}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	db, err := database.New(&cfg, discard(), database.WithSchema(querylog.SQLiteSchema))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	return querylog.NewRepository(db.Connection())
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := sqliteRepository(t)
	ctx := context.Background()

	s := querylog.New(repo, discard(), querylog.WithClock(steppingClock()))

	retrieved := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	ok := querylog.AppendCommand{
		Court:      "Delhi High Court",
		CaseType:   "Civil Appeal",
		CaseNumber: "1234",
		FilingYear: "2023",
		Success:    true,
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64)",
		ClientAddr: "198.51.100.23",
		Snapshot: &querylog.Snapshot{
			SourceURL:   "Delhi High Court/case/1234/2023",
			RetrievedAt: retrieved,
			Method:      "simulated",
		},
	}
	failed := querylog.AppendCommand{
		Court:      "Faridabad District Court",
		CaseType:   "Revenue",
		CaseNumber: "9",
		FilingYear: "2020",
		Error:      "court website unavailable",
	}

	a := mustAppend(t, s, ok)
	b := mustAppend(t, s, failed)

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}

	tests := []struct {
		got  querylog.Entry
		want querylog.Entry
	}{
		{loaded[0], a},
		{loaded[1], b},
	}
	for _, tt := range tests {
		t.Run(tt.want.Court, func(t *testing.T) {
			if tt.got.ID != tt.want.ID {
				t.Errorf("id = %s, want %s", tt.got.ID, tt.want.ID)
			}
			if tt.got.Success != tt.want.Success || tt.got.Court != tt.want.Court || tt.got.CaseType != tt.want.CaseType {
				t.Errorf("entry = %+v, want %+v", tt.got, tt.want)
			}
			if tt.got.Error != tt.want.Error {
				t.Errorf("error = %q, want %q", tt.got.Error, tt.want.Error)
			}
			if tt.got.UserAgent != tt.want.UserAgent || tt.got.ClientAddr != tt.want.ClientAddr {
				t.Errorf("client = (%q, %q), want (%q, %q)", tt.got.UserAgent, tt.got.ClientAddr, tt.want.UserAgent, tt.want.ClientAddr)
			}
			if !tt.got.Timestamp.Equal(tt.want.Timestamp) {
				t.Errorf("timestamp = %v, want %v", tt.got.Timestamp, tt.want.Timestamp)
			}
		})
	}

	if loaded[0].Snapshot == nil || !loaded[0].Snapshot.RetrievedAt.Equal(retrieved) {
		t.Errorf("snapshot = %+v, want retrieved_at %v", loaded[0].Snapshot, retrieved)
	}
	if loaded[0].UserAgent == "" || loaded[1].UserAgent != "" {
		t.Errorf("user agents = (%q, %q), want only the first set", loaded[0].UserAgent, loaded[1].UserAgent)
	}
	if loaded[1].Snapshot != nil {
		t.Errorf("failed entry snapshot = %+v, want nil", loaded[1].Snapshot)
	}
}

func TestRepositorySaveIgnoresDuplicates(t *testing.T) {
	repo := sqliteRepository(t)
	ctx := context.Background()

	s := querylog.New(repo, discard())
	e := mustAppend(t, s, cmd("A", "x", true))

	if err := repo.Save(ctx, []querylog.Entry{e}); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	loaded, _ := repo.Load(ctx)
	if len(loaded) != 1 {
		t.Errorf("loaded %d entries, want 1", len(loaded))
	}
}

func TestRepositoryClear(t *testing.T) {
	repo := sqliteRepository(t)
	ctx := context.Background()

	s := querylog.New(repo, discard())
	mustAppend(t, s, cmd("A", "x", true))
	mustAppend(t, s, cmd("B", "y", false))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	loaded, _ := repo.Load(ctx)
	if len(loaded) != 0 {
		t.Errorf("loaded %d entries after clear, want 0", len(loaded))
	}
}

func TestRepositoryStoreSurvivesRestart(t *testing.T) {
	repo := sqliteRepository(t)
	ctx := context.Background()

	before := querylog.New(repo, discard(), querylog.WithClock(steppingClock()))
	for _, c := range []string{"A", "B", "A"} {
		mustAppend(t, before, cmd(c, "x", c == "A"))
	}

	after := querylog.New(repo, discard())
	lc := lifecycle.New()
	after.Start(lc)
	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup: %v", err)
	}

	stats := after.Stats(ctx)
	if stats.TotalQueries != 3 || stats.SuccessfulQueries != 2 {
		t.Errorf("stats = %+v, want 3 total / 2 successful", stats)
	}
	if stats.PopularCourts[0].Court != "A" || stats.PopularCourts[0].Count != 2 {
		t.Errorf("top court = %+v, want A x2", stats.PopularCourts[0])
	}
}

func TestRepositorySearch(t *testing.T) {
	repo := sqliteRepository(t)
	ctx := context.Background()

	searcher, ok := repo.(querylog.Searcher)
	if !ok {
		t.Fatal("repository should implement Searcher")
	}

	s := querylog.New(repo, discard(), querylog.WithClock(steppingClock()))
	var appended []querylog.Entry
	for _, c := range []querylog.AppendCommand{
		cmd("A", "Civil Appeal", true),
		cmd("B", "Civil Appeal", false),
		cmd("A", "Revenue", false),
		cmd("A", "Civil Appeal", false),
		cmd("A", "Civil Appeal", true),
	} {
		appended = append(appended, mustAppend(t, s, c))
	}

	tests := []struct {
		name    string
		filters querylog.Filters
		page    pagination.PageRequest
		total   int
		want    []int
	}{
		{"newest first", querylog.Filters{}, pagination.PageRequest{Page: 1, PageSize: 2}, 5, []int{4, 3}},
		{"last page", querylog.Filters{}, pagination.PageRequest{Page: 3, PageSize: 2}, 5, []int{0}},
		{"court", querylog.Filters{Court: ptrTo("A")}, pagination.PageRequest{Page: 1, PageSize: 10}, 4, []int{4, 3, 2, 0}},
		{"failures for court", querylog.Filters{Court: ptrTo("A"), Success: ptrTo(false)}, pagination.PageRequest{Page: 1, PageSize: 10}, 2, []int{3, 2}},
		{"case type", querylog.Filters{CaseType: ptrTo("Revenue")}, pagination.PageRequest{Page: 1, PageSize: 10}, 1, []int{2}},
		{"no match", querylog.Filters{Court: ptrTo("Z")}, pagination.PageRequest{Page: 1, PageSize: 10}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := searcher.Search(ctx, tt.filters, tt.page)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got.Total != tt.total || len(got.Data) != len(tt.want) {
				t.Fatalf("total = %d, data = %d, want %d / %d", got.Total, len(got.Data), tt.total, len(tt.want))
			}
			for i, idx := range tt.want {
				if got.Data[i].ID != appended[idx].ID {
					t.Errorf("data[%d] = %s, want entry %d (%s)", i, got.Data[i].ID, idx, appended[idx].ID)
				}
			}

			page := s.Page(ctx, tt.filters, tt.page)
			if page.Warning != "" || page.Total != tt.total {
				t.Errorf("store page = %+v, want total %d from the repository", page.PageResult, tt.total)
			}
		})
	}
}
