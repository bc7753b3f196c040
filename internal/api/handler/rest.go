package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamestore/internal/api/middleware"
	"github.com/mcoot/gamestore/internal/api/response"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/services/purchase"
)

// RestHandler serves the read-only JSON resources
type RestHandler struct {
	catalog  *catalog.Service
	purchase *purchase.Controller
	progress *progress.Service
	logger   *slog.Logger
}

// NewRestHandler creates a new RestHandler
func NewRestHandler(catalogService *catalog.Service, purchaseController *purchase.Controller, progressService *progress.Service, logger *slog.Logger) *RestHandler {
	return &RestHandler{
		catalog:  catalogService,
		purchase: purchaseController,
		progress: progressService,
		logger:   logger,
	}
}

var index = response.Index{
	Name: "GameStore REST API",
	Endpoints: []response.Endpoint{
		{
			Path:        "/rest/highscores/",
			Description: "Every high score, best first. Filter by the exact game name.",
			Parameters:  []string{"game"},
		},
		{
			Path:        "/rest/sales/",
			Description: "Orders of the authenticated developer's games.",
			Parameters:  []string{"order", "game", "buyer", "status"},
			Auth:        "developer session cookie or Authorization: Bearer <token>",
		},
		{
			Path:        "/rest/games/",
			Description: "The game catalog. Filter by exact category or developer username.",
			Parameters:  []string{"category", "developer"},
		},
	},
}

// Index handles GET /rest/
func (h *RestHandler) Index(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, index)
}

// HighScores handles GET /rest/highscores/
func (h *RestHandler) HighScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.progress.QueryHighScores(r.Context(), optional(r, "game"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HighScores(scores))
}

// Sales handles GET /rest/sales/. Only developers, and only for their own games.
func (h *RestHandler) Sales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.purchase.ListSales(r.Context(), middleware.GetAccount(r.Context()), purchase.ParseSalesQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Sales(sales))
}

// Games handles GET /rest/games/
func (h *RestHandler) Games(w http.ResponseWriter, r *http.Request) {
	listings, err := h.catalog.QueryGames(r.Context(), catalog.GameQuery{
		Category:  optional(r, "category"),
		Developer: optional(r, "developer"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Games(listings))
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
