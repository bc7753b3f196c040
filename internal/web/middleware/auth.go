package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
	tokenContextKey   contextKey = "token"

	// SessionCookieName is the cookie holding the session token
	SessionCookieName = "session"
)

// GetAccount retrieves the authenticated account from the request context.
// Returns nil if no account is authenticated.
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// GetSessionToken returns the token of the authenticated session, or ""
func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// Auth returns middleware that requires a logged-in account.
// Anonymous requests are redirected to the login page with next set to the requested path.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, token := accountFromSession(r, authService)
			if account == nil {
				http.Redirect(w, r, "/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account, token)))
		})
	}
}

// OptionalAuth returns middleware that attempts authentication but doesn't require it.
// Sets the account in context if authenticated, nil otherwise.
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, token := accountFromSession(r, authService)
			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account, token)))
		})
	}
}

func withAccount(ctx context.Context, account *model.Account, token string) context.Context {
	ctx = context.WithValue(ctx, accountContextKey, account)
	return context.WithValue(ctx, tokenContextKey, token)
}

func accountFromSession(r *http.Request, authService *auth.Service) (*model.Account, string) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, ""
	}

	account, err := authService.CurrentAccount(r.Context(), cookie.Value)
	if err != nil {
		return nil, ""
	}
	return account, cookie.Value
}
