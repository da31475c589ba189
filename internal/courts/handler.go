package courts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/courtfetch/pkg/handlers"
	"github.com/JaimeStill/courtfetch/pkg/routes"
)

// Handler serves the court catalogue.
type Handler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler over registry.
func NewHandler(registry *Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "courts"),
	}
}

// Routes returns the route group for court endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/courts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{name}", Handler: h.Find},
		},
	}
}

// List returns every configured court.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.registry.All())
}

// Find returns a single court by name.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	court, err := h.registry.Lookup(r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, court)
}
