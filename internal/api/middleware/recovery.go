package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamestore/internal/api/apierr"
	"github.com/mcoot/gamestore/internal/middleware"
)

// Recovery turns a panic into a JSON 500 that names the request id, so the
// failure can be found in the logs
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	msg := "Internal server error"
	if id := middleware.GetRequestID(r.Context()); id != "" {
		msg += " (request " + id + ")"
	}
	apierr.WriteError(w, apierr.NewInternalErrorMessage(msg))
}
