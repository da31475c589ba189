package querylog

import (
	"cmp"
	"slices"
)

// TopN is the length of the popularity rankings.
const TopN = 5

// CourtCount is a court's share of queries.
type CourtCount struct {
	Court string `json:"court"`
	Count int    `json:"count"`
}

// CaseTypeCount is a case type's share of queries.
type CaseTypeCount struct {
	CaseType string `json:"case_type"`
	Count    int    `json:"count"`
}

// Stats summarises the query log.
type Stats struct {
	TotalQueries      int             `json:"total_queries"`
	SuccessfulQueries int             `json:"successful_queries"`
	SuccessRate       float64         `json:"success_rate"`
	PopularCourts     []CourtCount    `json:"popular_courts"`
	PopularCaseTypes  []CaseTypeCount `json:"popular_case_types"`
	PendingWrites     int             `json:"pending_writes"`
	Warning           string          `json:"warning,omitempty"`
}

// computeStats derives statistics from entries in insertion order.
func computeStats(entries []Entry) Stats {
	var (
		successes int
		courts    = newTally()
		caseTypes = newTally()
	)

	for _, e := range entries {
		if e.Success {
			successes++
		}
		courts.add(e.Court)
		caseTypes.add(e.CaseType)
	}

	stats := Stats{
		TotalQueries:      len(entries),
		SuccessfulQueries: successes,
		PopularCourts:     make([]CourtCount, 0, TopN),
		PopularCaseTypes:  make([]CaseTypeCount, 0, TopN),
	}
	if len(entries) > 0 {
		stats.SuccessRate = float64(successes) / float64(len(entries)) * 100
	}

	for _, r := range courts.top(TopN) {
		stats.PopularCourts = append(stats.PopularCourts, CourtCount{Court: r.key, Count: r.count})
	}
	for _, r := range caseTypes.top(TopN) {
		stats.PopularCaseTypes = append(stats.PopularCaseTypes, CaseTypeCount{CaseType: r.key, Count: r.count})
	}
	return stats
}

type ranked struct {
	key   string
	count int
}

// tally counts keys and remembers the order each was first seen.
type tally struct {
	index map[string]int
	items []ranked
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(key string) {
	if i, ok := t.index[key]; ok {
		t.items[i].count++
		return
	}
	t.index[key] = len(t.items)
	t.items = append(t.items, ranked{key: key, count: 1})
}

// top returns the n highest counts. Ties keep first-seen order.
func (t *tally) top(n int) []ranked {
	out := slices.Clone(t.items)
	slices.SortStableFunc(out, func(a, b ranked) int {
		return cmp.Compare(b.count, a.count)
	})
	return out[:min(n, len(out))]
}
