package querylog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/courtfetch/pkg/pagination"
	"github.com/JaimeStill/courtfetch/pkg/query"
	"github.com/JaimeStill/courtfetch/pkg/repository"
)

// SQLiteSchema creates the query log table on sqlite. Postgres uses the
// embedded migrations run by cmd/migrate.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS query_logs (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	case_type   TEXT NOT NULL,
	case_number TEXT NOT NULL,
	filing_year TEXT NOT NULL,
	court       TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	success     BOOLEAN NOT NULL,
	error       TEXT,
	snapshot    TEXT,
	user_agent  TEXT,
	client_addr TEXT
);
CREATE INDEX IF NOT EXISTS idx_query_logs_recorded_at ON query_logs (recorded_at);
CREATE INDEX IF NOT EXISTS idx_query_logs_court ON query_logs (court);
`

const insertEntry = `
INSERT INTO query_logs (id, case_type, case_number, filing_year, court, recorded_at, success, error, snapshot, user_agent, client_addr)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

type repo struct {
	db *sql.DB
}

// NewRepository returns a Persistence backed by the query_logs table. It
// also implements Searcher. The same statements run on postgres (pgx) and
// sqlite (modernc).
func NewRepository(db *sql.DB) Persistence {
	return &repo{db: db}
}

func (r *repo) Load(ctx context.Context) ([]Entry, error) {
	q, args := query.NewBuilder(projection, insertOrder).Build()
	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("load query logs: %w", err)
	}
	return entries, nil
}

func (r *repo) Search(ctx context.Context, filters Filters, page pagination.PageRequest) (pagination.PageResult[Entry], error) {
	qb := filters.Apply(query.NewBuilder(projection, insertOrder)).
		OrderByFields(newestOrder...)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return pagination.PageResult[Entry]{}, fmt.Errorf("count query logs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return pagination.PageResult[Entry]{}, fmt.Errorf("query query logs: %w", err)
	}

	return pagination.NewPageResult(entries, total, page.Page, page.PageSize), nil
}

func (r *repo) Save(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	argSets := make([][]any, len(entries))
	for i, e := range entries {
		args, err := insertArgs(e)
		if err != nil {
			return err
		}
		argSets[i] = args
	}

	if _, err := repository.ExecEach(ctx, r.db, insertEntry, argSets); err != nil {
		return fmt.Errorf("save query logs: %w", err)
	}
	return nil
}

func (r *repo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM query_logs"); err != nil {
		return fmt.Errorf("clear query logs: %w", err)
	}
	return nil
}
