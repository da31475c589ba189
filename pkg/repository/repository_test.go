package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/courtfetch/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE items (id TEXT PRIMARY KEY, label TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestMapErrorNil(t *testing.T) {
	if got := repository.MapError(nil, errNotFound, errDuplicate); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapErrorNotFound(t *testing.T) {
	got := repository.MapError(sql.ErrNoRows, errNotFound, errDuplicate)
	if !errors.Is(got, errNotFound) {
		t.Errorf("MapError(ErrNoRows) = %v, want %v", got, errNotFound)
	}
}

func TestMapErrorPgDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	got := repository.MapError(pgErr, errNotFound, errDuplicate)
	if !errors.Is(got, errDuplicate) {
		t.Errorf("MapError(PgError 23505) = %v, want %v", got, errDuplicate)
	}
}

func TestMapErrorPgNonDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"}
	if got := repository.MapError(pgErr, errNotFound, errDuplicate); got != pgErr {
		t.Errorf("MapError(PgError 23503) should pass through, got %v", got)
	}
}

func TestMapErrorSQLiteDuplicate(t *testing.T) {
	db := openSQLite(t)

	if _, err := db.Exec(`INSERT INTO items (id, label) VALUES ('a', 'first')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(`INSERT INTO items (id, label) VALUES ('a', 'second')`)
	if err == nil {
		t.Fatal("expected primary key violation")
	}

	if got := repository.MapError(err, errNotFound, errDuplicate); !errors.Is(got, errDuplicate) {
		t.Errorf("MapError(sqlite pk) = %v, want %v", got, errDuplicate)
	}
}

func TestExecEachAndQueryMany(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	n, err := repository.ExecEach(ctx, db,
		`INSERT INTO items (id, label) VALUES ($1, $2)`,
		[][]any{{"a", "one"}, {"b", "two"}, {"c", "three"}},
	)
	if err != nil {
		t.Fatalf("ExecEach: %v", err)
	}
	if n != 3 {
		t.Errorf("affected = %d, want 3", n)
	}

	labels, err := repository.QueryMany(ctx, db,
		`SELECT label FROM items ORDER BY id`, nil,
		func(s repository.Scanner) (string, error) {
			var l string
			err := s.Scan(&l)
			return l, err
		},
	)
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	want := []string{"one", "two", "three"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestExecEachRollsBackOnFailure(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := repository.ExecEach(ctx, db,
		`INSERT INTO items (id, label) VALUES ($1, $2)`,
		[][]any{{"a", "one"}, {"a", "dup"}},
	)
	if err == nil {
		t.Fatal("expected duplicate error")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}

func TestQueryManyEmpty(t *testing.T) {
	db := openSQLite(t)

	got, err := repository.QueryMany(context.Background(), db,
		`SELECT label FROM items`, nil,
		func(s repository.Scanner) (string, error) {
			var l string
			err := s.Scan(&l)
			return l, err
		},
	)
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("QueryMany on empty table = %#v, want empty non-nil slice", got)
	}
}
