// Package cases orchestrates a court case lookup: it validates the query,
// gates it behind a CAPTCHA challenge when the policy asks for one, and
// delegates the fetch to a Source.
package cases

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/courtfetch/internal/courts"
)

// YearWindow is how many years back a filing year may reach.
const YearWindow = 20

// Query identifies a case to look up. It is a value and is never mutated.
type Query struct {
	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	FilingYear string `json:"filing_year"`
	Court      string `json:"court"`
}

// Validate checks q against the court catalogue and returns the resolved court.
func (q Query) Validate(registry *courts.Registry, now time.Time) (courts.Court, error) {
	if strings.TrimSpace(q.CaseType) == "" {
		return courts.Court{}, fmt.Errorf("%w: case type is required", ErrValidation)
	}
	if !allDigits(q.CaseNumber) {
		return courts.Court{}, fmt.Errorf("%w: case number must contain only digits", ErrValidation)
	}
	if err := validateYear(q.FilingYear, now); err != nil {
		return courts.Court{}, err
	}

	court, err := registry.Lookup(q.Court)
	if err != nil {
		return courts.Court{}, fmt.Errorf("%w: %s", ErrUnknownCourt, q.Court)
	}
	if !court.AllowsCaseType(q.CaseType) {
		return courts.Court{}, fmt.Errorf("%w: %s is not heard by %s", ErrUnknownCaseType, q.CaseType, court.Name)
	}
	return court, nil
}

func validateYear(year string, now time.Time) error {
	if len(year) != 4 || !allDigits(year) {
		return fmt.Errorf("%w: filing year must be a 4-digit year", ErrValidation)
	}

	y, _ := strconv.Atoi(year)
	current := now.Year()
	if y > current || y <= current-YearWindow {
		return fmt.Errorf("%w: filing year must be between %d and %d", ErrValidation, current-YearWindow+1, current)
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
