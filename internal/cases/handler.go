package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/courtfetch/pkg/handlers"
	"github.com/JaimeStill/courtfetch/pkg/routes"
)

const maxSearchBody = 64 << 10

// SearchRequest is the body of POST /cases/search.
type SearchRequest struct {
	Query    Query   `json:"query"`
	Solution *string `json:"solution,omitempty"`
}

// Handler exposes the search protocol over HTTP and records terminal outcomes.
type Handler struct {
	sessions *Sessions
	recorder Recorder
	logger   *slog.Logger
}

// NewHandler creates a Handler. recorder may be nil.
func NewHandler(sessions *Sessions, recorder Recorder, logger *slog.Logger) *Handler {
	if recorder == nil {
		recorder = RecorderFunc(func(context.Context, Query, Client, *Result) {})
	}
	return &Handler{
		sessions: sessions,
		recorder: recorder,
		logger:   logger.With("handler", "cases"),
	}
}

// Routes returns the route group for case endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/cases",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/challenge", Handler: h.Challenge},
			{Method: "POST", Pattern: "/challenge", Handler: h.Refresh},
		},
	}
}

// Search runs one step of the search protocol for the caller's session.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: malformed request body", ErrValidation))
		return
	}

	orch, known := h.sessions.Resolve(r)

	res, err := orch.Search(r.Context(), req.Query, req.Solution)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if !known && orch.Pending() {
		h.sessions.Bind(w, orch)
	}

	if res.Terminal() {
		if res.Err != nil {
			h.logger.Warn("case search failed",
				"court", req.Query.Court,
				"case_type", req.Query.CaseType,
				"case_number", req.Query.CaseNumber,
				"filing_year", req.Query.FilingYear,
				"error", res.Err,
			)
		}
		h.recorder.Record(context.WithoutCancel(r.Context()), req.Query, ClientFromRequest(r), res)
	}

	handlers.RespondJSON(w, http.StatusOK, res.Response())
}

// Challenge reports whether the caller's session is waiting on a solution.
func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request) {
	var status ChallengeStatus
	if orch, ok := h.sessions.current(r); ok {
		if ch, ok := orch.Challenge(); ok {
			status = ChallengeStatus{
				Pending:        true,
				ImageReference: ch.ImageReference,
				SessionID:      ch.SessionID,
			}
		}
	}
	handlers.RespondJSON(w, http.StatusOK, status)
}

// Refresh replaces the caller's challenge with a new code.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.sessions.current(r)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusConflict, ErrNoPendingChallenge)
		return
	}

	ch, err := orch.Refresh()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{
		Status:         StatusChallenge,
		ImageReference: ch.ImageReference,
		SessionID:      ch.SessionID,
	})
}
