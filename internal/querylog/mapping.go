package querylog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/courtfetch/pkg/query"
	"github.com/JaimeStill/courtfetch/pkg/repository"
)

var projection = query.
	NewProjectionMap("", "query_logs", "q").
	Project("id", "ID").
	Project("case_type", "CaseType").
	Project("case_number", "CaseNumber").
	Project("filing_year", "FilingYear").
	Project("court", "Court").
	Project("recorded_at", "Timestamp").
	Project("success", "Success").
	Project("error", "Error").
	Project("snapshot", "Snapshot").
	Project("user_agent", "UserAgent").
	Project("client_addr", "ClientAddr").
	Project("seq", "Seq")

var (
	insertOrder = query.SortField{Field: "Seq"}
	newestOrder = []query.SortField{
		{Field: "Timestamp", Descending: true},
		{Field: "Seq", Descending: true},
	}
)

// Filters narrows a history read. Nil fields match every entry.
type Filters struct {
	Court    *string `json:"court,omitempty"`
	CaseType *string `json:"case_type,omitempty"`
	Success  *bool   `json:"success,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Court", deref(f.Court)).
		WhereEquals("CaseType", deref(f.CaseType)).
		WhereEquals("Success", deref(f.Success))
}

// deref hands drivers the value itself. A nil pointer stays nil so the
// builder skips the condition.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Matches reports whether e satisfies every set filter.
func (f Filters) Matches(e Entry) bool {
	if f.Court != nil && e.Court != *f.Court {
		return false
	}
	if f.CaseType != nil && e.CaseType != *f.CaseType {
		return false
	}
	if f.Success != nil && e.Success != *f.Success {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("court"); c != "" {
		f.Court = &c
	}

	if t := values.Get("case_type"); t != "" {
		f.CaseType = &t
	}

	if s := values.Get("success"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Success = &v
		}
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		seq     int64
		errText sql.NullString
		snap    sql.NullString
		agent   sql.NullString
		addr    sql.NullString
	)

	err := s.Scan(
		&e.ID,
		&e.CaseType,
		&e.CaseNumber,
		&e.FilingYear,
		&e.Court,
		timestamp{&e.Timestamp},
		&e.Success,
		&errText,
		&snap,
		&agent,
		&addr,
		&seq,
	)
	if err != nil {
		return Entry{}, err
	}

	e.Error = errText.String
	e.UserAgent = agent.String
	e.ClientAddr = addr.String
	if snap.Valid && snap.String != "" {
		e.Snapshot = new(Snapshot)
		if err := json.Unmarshal([]byte(snap.String), e.Snapshot); err != nil {
			return Entry{}, fmt.Errorf("decode snapshot for %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func insertArgs(e Entry) ([]any, error) {
	var snap any
	if e.Snapshot != nil {
		b, err := json.Marshal(e.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot for %s: %w", e.ID, err)
		}
		snap = string(b)
	}

	return []any{
		e.ID,
		e.CaseType,
		e.CaseNumber,
		e.FilingYear,
		e.Court,
		e.Timestamp,
		e.Success,
		nullable(e.Error),
		snap,
		nullable(e.UserAgent),
		nullable(e.ClientAddr),
	}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// timestamp scans a time column whether the driver returns time.Time (pgx)
// or text (sqlite without a recognised declared type).
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
