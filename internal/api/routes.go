package api

import (
	"net/http"

	"github.com/JaimeStill/courtfetch/internal/cases"
	"github.com/JaimeStill/courtfetch/internal/querylog"
	"github.com/JaimeStill/courtfetch/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	recorder := newHistoryRecorder(domain.History, runtime.Logger)

	routes.Register(
		mux,
		cases.NewHandler(domain.Sessions, recorder, runtime.Logger).Routes(),
		domain.Courts.Handler(runtime.Logger).Routes(),
		querylog.NewHandler(domain.History, runtime.Logger, runtime.Pagination).Routes(),
		domain.Documents.Handler(runtime.MaxUploadSize).Routes(),
	)
}
