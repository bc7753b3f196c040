package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// CatalogHandler handles browsing and adding games
type CatalogHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalog.Service, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// GameList renders every game, filtered by category or else by name
func (h *CatalogHandler) GameList(w http.ResponseWriter, r *http.Request) {
	q := catalog.ListQuery{
		Category: r.URL.Query().Get("category"),
		Name:     strings.TrimSpace(r.URL.Query().Get("name")),
	}
	games, err := h.catalog.ListGames(r.Context(), q)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.GameList(pages.GameListData{
		PageData:   pageData(r, "Games"),
		Games:      games,
		Categories: h.catalog.Categories(),
		Category:   q.Category,
		Name:       q.Name,
	}))
}

// AddGamePage renders the add-game form
func (h *CatalogHandler) AddGamePage(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(middleware.GetAccount(r.Context()), model.RoleDeveloper); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.AddGame(h.formData(r)))
}

// AddGame handles add-game form submission
func (h *CatalogHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	if err := auth.Require(account, model.RoleDeveloper); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	in := catalog.GameInput{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Category:    r.PostFormValue("category"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		URL:         strings.TrimSpace(r.PostFormValue("game_url")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
	}
	data := h.formData(r)
	data.Name, data.Category, data.Description, data.URL, data.Price = in.Name, in.Category, in.Description, in.URL, in.Price

	game, err := h.catalog.AddGame(r.Context(), account, in)
	if err != nil {
		if !formFailure(&data, err) {
			renderError(w, r, h.logger, err)
			return
		}
		render(w, r, http.StatusOK, pages.AddGame(data))
		return
	}

	data = h.formData(r)
	data.Added = game
	render(w, r, http.StatusOK, pages.AddGame(data))
}

func (h *CatalogHandler) formData(r *http.Request) pages.GameFormData {
	return pages.GameFormData{
		PageData:   pageData(r, "Add game"),
		Categories: h.catalog.Categories(),
	}
}

// formFailure puts a business-rule rejection on the game form.
// Returns false for errors the form cannot show.
func formFailure(data *pages.GameFormData, err error) bool {
	if fields, ok := fieldErrors(err); ok {
		data.FieldErrors = fields
		return true
	}
	switch {
	case errors.Is(err, model.ErrInvalidCategory):
		data.Error = "Please select a category from the list!"
	case errors.Is(err, model.ErrDuplicateName):
		data.FieldErrors = map[string]string{"name": "Game with this Name already exists."}
	default:
		return false
	}
	return true
}
