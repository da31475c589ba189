package querylog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPersistence marks a failure of the durable surface. The in-memory
	// state is unaffected.
	ErrPersistence  = errors.New("query log persistence failed")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// PersistenceWarning reports a degraded write or sync. It matches
// ErrPersistence and the underlying cause with errors.Is.
type PersistenceWarning struct {
	Op  string
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, w.Op, w.Err)
}

func (w *PersistenceWarning) Unwrap() []error {
	return []error{ErrPersistence, w.Err}
}

// MapHTTPStatus maps query log errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
