// Package captcha models the CAPTCHA gate in front of a court's case search:
// deciding when a challenge is required, generating codes, and holding the
// single outstanding challenge a client must answer.
package captcha

import (
	"strings"
	"time"
)

// Challenge is one issued CAPTCHA. Answer never leaves the process.
type Challenge struct {
	ImageReference string    `json:"image_reference"`
	SessionID      string    `json:"session_id"`
	Answer         string    `json:"-"`
	IssuedAt       time.Time `json:"issued_at"`
}

// Normalize trims surrounding whitespace and upper-cases a submitted solution.
func Normalize(solution string) string {
	return strings.ToUpper(strings.TrimSpace(solution))
}

// Matches reports whether solution answers the challenge, ignoring case and
// surrounding whitespace.
func (c Challenge) Matches(solution string) bool {
	return c.Answer != "" && Normalize(solution) == Normalize(c.Answer)
}

// Expired reports whether the challenge is older than ttl at now. A zero ttl never expires.
func (c Challenge) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(c.IssuedAt) > ttl
}
