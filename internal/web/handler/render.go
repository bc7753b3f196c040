package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/layout"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// pageData builds the data shared by every page from the request context
func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:   title,
		Account: middleware.GetAccount(r.Context()),
		Flash:   middleware.GetFlash(r.Context()),
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = c.Render(r.Context(), w)
}

// renderError maps service errors to error pages. Unknown errors are logged and shown as 500.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, title, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	RenderErrorPage(w, r, status, title, message)
}

// RenderErrorPage writes an error page with the given status
func RenderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	render(w, r, status, pages.Error(pages.ErrorData{
		PageData: pageData(r, title),
		Status:   status,
		Message:  message,
	}))
}

func classify(err error) (status int, title, message string) {
	switch {
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "Forbidden", "You do not have permission to do that."
	case errors.Is(err, model.ErrAlreadyOwned):
		return http.StatusForbidden, "Forbidden", "You already own this game."
	case errors.Is(err, model.ErrNotPurchasable):
		return http.StatusForbidden, "Forbidden", "This game is free and cannot be bought."
	case errors.Is(err, model.ErrBadRequest):
		return http.StatusBadRequest, "Bad Request", "The request could not be understood."
	case errors.Is(err, model.ErrIntegrity):
		return http.StatusBadRequest, "Bad Request", "The payment could not be verified."
	case errors.Is(err, model.ErrAlreadyProcessed):
		return http.StatusBadRequest, "Bad Request", "This order has already been processed."
	case errors.Is(err, model.ErrGameNotFound):
		return http.StatusNotFound, "Not Found", "No such game."
	case errors.Is(err, model.ErrOrderNotFound):
		return http.StatusNotFound, "Not Found", "No such order."
	case errors.Is(err, model.ErrAccountNotFound):
		return http.StatusNotFound, "Not Found", "No such account."
	default:
		return http.StatusInternalServerError, "Internal Server Error", "Something went wrong. Please try again later."
	}
}

// NotFound renders the 404 page for unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderErrorPage(w, r, http.StatusNotFound, "Not Found", "The page you were looking for does not exist.")
}

// gameIDVar reads the {id} route variable
func gameIDVar(r *http.Request) (model.GameID, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return model.GameID(id), true
}

// localPath reports whether next is a same-site path, so redirecting to it is safe
func localPath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, `/\`)
}

func fieldErrors(err error) (map[string]string, bool) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
