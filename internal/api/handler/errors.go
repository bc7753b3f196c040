package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamestore/internal/api/apierr"
)

// writeError writes err as a JSON error. Errors that map to a 500 are logged first.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	apierr.WriteError(w, err)
}

// optional returns a pointer to the query parameter, or nil if it is absent.
// A present but empty parameter is kept.
func optional(r *http.Request, key string) *string {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}
