package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// AuthHandler handles registration, activation, login and logout
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterPage renders the registration form
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccount(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, pages.Register(pages.RegisterData{
		PageData:    pageData(r, "Register"),
		AccountType: string(model.RolePlayer),
	}))
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	in := auth.RegisterInput{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_check"),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		FirstName:       strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:        strings.TrimSpace(r.PostFormValue("last_name")),
		Role:            model.Role(r.PostFormValue("account_type")),
	}

	data := pages.RegisterData{
		PageData:    pageData(r, "Register"),
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		AccountType: string(in.Role),
	}

	account, err := h.authService.Register(r.Context(), in)
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			data.FieldErrors = fields
		} else if errors.Is(err, model.ErrDuplicateUsername) {
			data.FieldErrors = map[string]string{"username": "A user with that username already exists."}
		} else {
			renderError(w, r, h.logger, err)
			return
		}
		render(w, r, http.StatusOK, pages.Register(data))
		return
	}

	http.Redirect(w, r, "/login/?activation_sent="+url.QueryEscape(account.Email), http.StatusSeeOther)
}

// Activate consumes the emailed verification link
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	result := "success"
	switch err := h.authService.Activate(r.Context(), hash); {
	case err == nil:
	case errors.Is(err, model.ErrAlreadyActivated):
		result = "duplicate"
	case errors.Is(err, model.ErrInvalidActivationHash):
		result = "fail"
	default:
		h.logger.ErrorContext(r.Context(), "activation failed", slog.Any("error", err))
		result = "fail"
	}
	http.Redirect(w, r, "/login/?activation="+result, http.StatusSeeOther)
}

// LoginPage renders the login form, with a notice for the query flags set by
// registration and activation redirects
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccount(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	q := r.URL.Query()
	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Next:     q.Get("next"),
	}
	switch {
	case q.Has("activation_sent"):
		data.Notice = "A verification link has been sent to " + q.Get("activation_sent") + "."
	case q.Get("activation") == "success":
		data.Notice = "Your account is now activated. You can log in."
	case q.Get("activation") == "duplicate":
		data.Notice = "Your account has already been activated."
	case q.Get("activation") == "fail":
		data.Error = "The activation link is not valid."
	case q.Get("activated") == "fail":
		data.Error = "Your account is not activated yet. Check your email for the verification link."
	}
	render(w, r, http.StatusOK, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RenderErrorPage(w, r, http.StatusBadRequest, "Bad Request", "Invalid form data.")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Username: username,
		Next:     next,
	}
	if username == "" || password == "" {
		data.Error = "Username and password are required."
		render(w, r, http.StatusOK, pages.Login(data))
		return
	}

	session, err := h.authService.Login(r.Context(), username, password)
	switch {
	case errors.Is(err, model.ErrNotActivated):
		http.Redirect(w, r, "/login/?activated=fail", http.StatusSeeOther)
		return
	case errors.Is(err, model.ErrInvalidCredentials):
		data.Error = "Invalid username or password."
		render(w, r, http.StatusOK, pages.Login(data))
		return
	case err != nil:
		renderError(w, r, h.logger, err)
		return
	}

	setSessionCookie(w, session)
	if !localPath(next) {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout ends the session and returns to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.authService.InvalidateSession(r.Context(), cookie.Value); err != nil {
			h.logger.WarnContext(r.Context(), "failed to invalidate session", slog.Any("error", err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login/", http.StatusSeeOther)
}

// TooManyLogins is served when the login rate limit is exceeded
func TooManyLogins(w http.ResponseWriter, r *http.Request) {
	RenderErrorPage(w, r, http.StatusTooManyRequests, "Too Many Requests", "Too many login attempts. Please wait a moment and try again.")
}

func setSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
