package cases

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("invalid case query")
	ErrUnknownCourt      = errors.New("unknown court")
	ErrUnknownCaseType   = errors.New("case type not available for court")
	ErrChallengeMismatch = errors.New("challenge solution rejected")
	ErrUpstream          = errors.New("case source failed")

	ErrNoPendingChallenge = errors.New("no challenge to refresh")
)

// MapHTTPStatus maps the errors Search returns to HTTP status codes.
// Mismatch and upstream failures are carried in a Result and answered with 200.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownCourt), errors.Is(err, ErrUnknownCaseType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoPendingChallenge):
		return http.StatusConflict
	case errors.Is(err, ErrChallengeMismatch), errors.Is(err, ErrUpstream):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
