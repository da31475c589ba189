// Package querylog keeps an append-only history of terminal case-search
// outcomes and derives usage statistics from it. The in-memory copy is the
// source of truth for reads; writes are mirrored to a pluggable Persistence.
package querylog

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot records where a successful result came from.
type Snapshot struct {
	SourceURL   string    `json:"source_url"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Method      string    `json:"method"`
}

// Entry is one recorded search outcome. Entries are immutable.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	CaseType   string    `json:"case_type"`
	CaseNumber string    `json:"case_number"`
	FilingYear string    `json:"filing_year"`
	Court      string    `json:"court"`
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Snapshot   *Snapshot `json:"snapshot,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	ClientAddr string    `json:"client_addr,omitempty"`
}

// AppendCommand carries the fields of a new entry. ID and Timestamp are
// assigned by the store.
type AppendCommand struct {
	CaseType   string
	CaseNumber string
	FilingYear string
	Court      string
	Success    bool
	Error      string
	Snapshot   *Snapshot
	UserAgent  string
	ClientAddr string
}

// History is a read of recent entries. Warning is set when the persistence
// surface could not be synchronised and the entries come from memory alone.
type History struct {
	Entries []Entry `json:"entries"`
	Warning string  `json:"warning,omitempty"`
}
