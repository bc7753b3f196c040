package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamestore/internal/api/apierr"
	"github.com/mcoot/gamestore/internal/api/handler"
	"github.com/mcoot/gamestore/internal/api/middleware"
	"github.com/mcoot/gamestore/internal/metrics"
	rootmw "github.com/mcoot/gamestore/internal/middleware"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/services/purchase"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	CatalogService     *catalog.Service
	PurchaseController *purchase.Controller
	ProgressService    *progress.Service
	Metrics            *metrics.Metrics // optional
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	r.Use(rootmw.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(rootmw.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.InstrumentHandler)
	}

	restHandler := handler.NewRestHandler(cfg.CatalogService, cfg.PurchaseController, cfg.ProgressService, cfg.Logger)

	// Public resources
	rest := r.PathPrefix("/rest").Subrouter()
	rest.HandleFunc("/", restHandler.Index).Methods(http.MethodGet)
	rest.HandleFunc("/highscores/", restHandler.HighScores).Methods(http.MethodGet)
	rest.HandleFunc("/games/", restHandler.Games).Methods(http.MethodGet)

	// Sales need a logged-in account; the handler checks it is a developer
	sales := rest.PathPrefix("/sales").Subrouter()
	sales.Use(middleware.Auth(cfg.AuthService))
	sales.HandleFunc("/", restHandler.Sales).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	r.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError("No such resource"))
}
