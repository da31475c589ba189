package querylog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/courtfetch/pkg/handlers"
	"github.com/JaimeStill/courtfetch/pkg/pagination"
	"github.com/JaimeStill/courtfetch/pkg/routes"
)

// DefaultLimit is the number of entries GET /history returns without a limit parameter.
const DefaultLimit = 10

// FlushResponse reports the outcome of a manual flush.
type FlushResponse struct {
	Pending int    `json:"pending"`
	Warning string `json:"warning,omitempty"`
}

// Handler serves the query history and statistics.
type Handler struct {
	store      *Store
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over store.
func NewHandler(store *Store, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		store:      store,
		logger:     logger.With("handler", "history"),
		pagination: pagination,
	}
}

// Routes returns the route group for history endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/history",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Recent},
			{Method: "GET", Pattern: "/page", Handler: h.Page},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "POST", Pattern: "/flush", Handler: h.Flush},
			{Method: "DELETE", Pattern: "", Handler: h.Clear},
		},
	}
}

// Recent returns the newest entries, limited by the limit query parameter.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			handlers.RespondError(w, h.logger, MapHTTPStatus(ErrInvalidLimit), ErrInvalidLimit)
			return
		}
		limit = n
	}

	filters := FiltersFromQuery(r.URL.Query())
	handlers.RespondJSON(w, http.StatusOK, h.store.Recent(r.Context(), filters, limit))
}

// Page returns one page of history, optionally filtered by court, case_type
// and success.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req := pagination.PageRequestFromQuery(values, h.pagination)
	handlers.RespondJSON(w, http.StatusOK, h.store.Page(r.Context(), FiltersFromQuery(values), req))
}

// Stats returns aggregate statistics and the number of entries awaiting persistence.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats(r.Context())
	stats.PendingWrites = h.store.Pending()
	handlers.RespondJSON(w, http.StatusOK, stats)
}

// Flush retries persistence of queued entries.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	pending, err := h.store.Flush(r.Context())

	resp := FlushResponse{Pending: pending}
	if err != nil {
		resp.Warning = err.Error()
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Clear discards the history.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		handlers.RespondJSON(w, http.StatusOK, FlushResponse{Warning: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
