package cases

import "time"

// OrderType classifies a document on a case's order sheet.
type OrderType string

const (
	OrderTypeOrder    OrderType = "order"
	OrderTypeJudgment OrderType = "judgment"
	OrderTypeNotice   OrderType = "notice"
)

// Parties lists both sides of a case.
type Parties struct {
	Petitioners []string `json:"petitioners"`
	Respondents []string `json:"respondents"`
}

// Order is one order, judgment, or notice issued in a case.
// DocumentRef is a storage key usable with the documents API.
type Order struct {
	Title       string    `json:"title"`
	Type        OrderType `json:"type"`
	Date        string    `json:"date"`
	DocumentRef string    `json:"document_ref,omitempty"`
	IsLatest    bool      `json:"is_latest"`
}

// Snapshot records where and how a record was obtained.
type Snapshot struct {
	SourceURL   string    `json:"source_url"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Method      string    `json:"method"`
}

// Record is a fetched case. Dates are formatted YYYY-MM-DD.
type Record struct {
	Parties         Parties   `json:"parties"`
	FilingDate      string    `json:"filing_date"`
	NextHearingDate string    `json:"next_hearing_date"`
	LastOrderDate   string    `json:"last_order_date"`
	Status          string    `json:"status"`
	CaseType        string    `json:"case_type"`
	CaseNumber      string    `json:"case_number"`
	FilingYear      string    `json:"filing_year"`
	Court           string    `json:"court"`
	Orders          []Order   `json:"orders"`
	Snapshot        *Snapshot `json:"snapshot,omitempty"`
}
