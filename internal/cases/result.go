package cases

import "github.com/JaimeStill/courtfetch/internal/captcha"

// Status is the kind of outcome a search produced.
type Status string

const (
	StatusChallenge Status = "challenge"
	StatusOK        Status = "ok"
	StatusError     Status = "error"
)

// Result is the outcome of one Search call. A challenge result is
// intermediate; ok and error results are terminal.
type Result struct {
	Status    Status
	Data      *Record
	Reason    string
	Err       error
	Challenge *captcha.Challenge
}

// Terminal reports whether the result ends a query flow and should be recorded.
func (r *Result) Terminal() bool {
	return r.Status != StatusChallenge
}

// Response is the wire form of a Result.
type Response struct {
	Status         Status  `json:"status"`
	ImageReference string  `json:"image_reference,omitempty"`
	SessionID      string  `json:"session_id,omitempty"`
	Data           *Record `json:"data,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// ChallengeStatus is the wire form of a session's outstanding challenge.
type ChallengeStatus struct {
	Pending        bool   `json:"pending"`
	ImageReference string `json:"image_reference,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
}

// Response renders the result for transport. A failed result that carries a
// fresh challenge includes its image reference and session id.
func (r *Result) Response() Response {
	resp := Response{
		Status: r.Status,
		Data:   r.Data,
		Reason: r.Reason,
	}
	if r.Challenge != nil {
		resp.ImageReference = r.Challenge.ImageReference
		resp.SessionID = r.Challenge.SessionID
	}
	return resp
}
