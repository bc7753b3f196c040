package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/purchase"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// AccountHandler handles the account pages. Every route requires login.
type AccountHandler struct {
	authService *auth.Service
	catalog     *catalog.Service
	purchase    *purchase.Controller
	logger      *slog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(authService *auth.Service, catalogService *catalog.Service, purchaseController *purchase.Controller, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		catalog:     catalogService,
		purchase:    purchaseController,
		logger:      logger,
	}
}

// Account renders the account overview with owned or added games
func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.GamesForAccount(r.Context(), middleware.GetAccount(r.Context()))
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.Account(pages.AccountData{
		PageData: pageData(r, "My account"),
		Games:    games,
	}))
}

// EditNamePage renders the name form prefilled with the current name
func (h *AccountHandler) EditNamePage(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	render(w, r, http.StatusOK, pages.EditName(pages.EditNameData{
		PageData:  pageData(r, "Edit name"),
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}))
}

// EditName handles name form submission
func (h *AccountHandler) EditName(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}
	first := strings.TrimSpace(r.PostFormValue("first_name"))
	last := strings.TrimSpace(r.PostFormValue("last_name"))

	if _, err := h.authService.EditName(r.Context(), middleware.GetAccount(r.Context()), first, last); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			renderError(w, r, h.logger, err)
			return
		}
		render(w, r, http.StatusOK, pages.EditName(pages.EditNameData{
			PageData:    pageData(r, "Edit name"),
			FirstName:   first,
			LastName:    last,
			FieldErrors: fields,
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Your name has been updated.")
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// EditPasswordPage renders the password form
func (h *AccountHandler) EditPasswordPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, pages.EditPassword(pages.EditPasswordData{
		PageData: pageData(r, "Change password"),
	}))
}

// EditPassword handles password form submission. The session stays logged in.
func (h *AccountHandler) EditPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	err := h.authService.ChangePassword(r.Context(), middleware.GetAccount(r.Context()),
		r.PostFormValue("old_password"), r.PostFormValue("password"), r.PostFormValue("password_check"))
	if err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			renderError(w, r, h.logger, err)
			return
		}
		render(w, r, http.StatusOK, pages.EditPassword(pages.EditPasswordData{
			PageData:    pageData(r, "Change password"),
			FieldErrors: fields,
		}))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Your password has been changed.")
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// EditGamePage renders the edit form of one of the developer's games
func (h *AccountHandler) EditGamePage(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}
	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	if err := auth.RequireGameOwner(middleware.GetAccount(r.Context()), game); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.EditGame(pages.GameFormData{
		PageData:    pageData(r, "Edit game"),
		GameID:      game.ID,
		Name:        game.Name,
		Category:    game.Category,
		Description: game.Description,
		Price:       game.Price.String(),
		Categories:  h.catalog.Categories(),
	}))
}

// EditGame handles edit form submission
func (h *AccountHandler) EditGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	in := catalog.GameEdit{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Category:    r.PostFormValue("category"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
	}

	if _, err := h.catalog.EditGame(r.Context(), middleware.GetAccount(r.Context()), id, in); err != nil {
		data := pages.GameFormData{
			PageData:    pageData(r, "Edit game"),
			GameID:      id,
			Name:        in.Name,
			Category:    in.Category,
			Description: in.Description,
			Price:       in.Price,
			Categories:  h.catalog.Categories(),
		}
		if !formFailure(&data, err) {
			renderError(w, r, h.logger, err)
			return
		}
		render(w, r, http.StatusOK, pages.EditGame(data))
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "The game has been updated.")
	http.Redirect(w, r, "/account/", http.StatusSeeOther)
}

// Sales renders the paid orders of one of the developer's games
func (h *AccountHandler) Sales(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}

	game, sales, err := h.purchase.GameSales(r.Context(), middleware.GetAccount(r.Context()), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	rows := make([]pages.SaleRow, 0, len(sales))
	for _, s := range sales {
		row := pages.SaleRow{OrderID: s.Order.ID, Buyer: s.Buyer, Price: s.Order.Price}
		if s.Order.PaidAt != nil {
			row.PaidAt = s.Order.PaidAt.Format(time.DateTime)
		}
		rows = append(rows, row)
	}

	render(w, r, http.StatusOK, pages.Sales(pages.SalesData{
		PageData: pageData(r, "Sales of "+game.Name),
		Game:     game,
		Sales:    rows,
	}))
}

