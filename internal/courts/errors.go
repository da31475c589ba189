package courts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("court not found")
	ErrInvalidConfig = errors.New("invalid court configuration")
)

// MapHTTPStatus maps court errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
