package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamestore/internal/metrics"
	rootmw "github.com/mcoot/gamestore/internal/middleware"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/services/purchase"
	"github.com/mcoot/gamestore/internal/web/handler"
	"github.com/mcoot/gamestore/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	CatalogService     *catalog.Service
	PurchaseController *purchase.Controller
	ProgressService    *progress.Service
	Metrics            *metrics.Metrics // optional
	StaticDir          string           // Path to static files directory

	// LoginRate and LoginBurst throttle login attempts per client address. Zero disables the limit.
	LoginRate  float64
	LoginBurst int
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = middleware.Flash()(middleware.OptionalAuth(cfg.AuthService)(http.HandlerFunc(handler.NotFound)))

	r.Use(rootmw.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(rootmw.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.InstrumentHandler)
	}

	flash := middleware.Flash()
	authRequired := middleware.Auth(cfg.AuthService)
	optionalAuth := middleware.OptionalAuth(cfg.AuthService)

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	catalogHandler := handler.NewCatalogHandler(cfg.CatalogService, cfg.Logger)
	accountHandler := handler.NewAccountHandler(cfg.AuthService, cfg.CatalogService, cfg.PurchaseController, cfg.Logger)
	gameplayHandler := handler.NewGameplayHandler(cfg.CatalogService, cfg.ProgressService, cfg.Logger)
	purchaseHandler := handler.NewPurchaseHandler(cfg.PurchaseController, cfg.CatalogService, cfg.Logger)

	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (optional auth for showing the account in nav)
	public := r.NewRoute().Subrouter()
	public.Use(flash)
	public.Use(optionalAuth)
	public.HandleFunc("/", catalogHandler.GameList).Methods(http.MethodGet)
	public.HandleFunc("/gamelist/", catalogHandler.GameList).Methods(http.MethodGet)
	public.HandleFunc("/game/{id:[0-9]+}/", gameplayHandler.View).Methods(http.MethodGet)
	public.HandleFunc("/game/{id:[0-9]+}/", gameplayHandler.Message).Methods(http.MethodPost)
	public.HandleFunc("/highscores/{id:[0-9]+}/", gameplayHandler.HighScores).Methods(http.MethodGet)

	public.HandleFunc("/register/", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register/", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/register/activate/{hash}/", authHandler.Activate).Methods(http.MethodGet)
	public.HandleFunc("/login/", authHandler.LoginPage).Methods(http.MethodGet)
	var login http.Handler = http.HandlerFunc(authHandler.Login)
	if cfg.LoginRate > 0 && cfg.LoginBurst > 0 {
		limiter := rootmw.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst, cfg.Logger, http.HandlerFunc(handler.TooManyLogins))
		login = limiter.Handler(login)
	}
	public.Handle("/login/", login).Methods(http.MethodPost)
	public.HandleFunc("/logout/", authHandler.Logout).Methods(http.MethodGet, http.MethodPost)

	// Protected routes (require login)
	protected := r.NewRoute().Subrouter()
	protected.Use(flash)
	protected.Use(authRequired)

	protected.HandleFunc("/account/", accountHandler.Account).Methods(http.MethodGet)
	protected.HandleFunc("/account/sales/{id:[0-9]+}/", accountHandler.Sales).Methods(http.MethodGet)
	protected.HandleFunc("/account/edit/name/", accountHandler.EditNamePage).Methods(http.MethodGet)
	protected.HandleFunc("/account/edit/name/", accountHandler.EditName).Methods(http.MethodPost)
	protected.HandleFunc("/account/edit/password/", accountHandler.EditPasswordPage).Methods(http.MethodGet)
	protected.HandleFunc("/account/edit/password/", accountHandler.EditPassword).Methods(http.MethodPost)
	protected.HandleFunc("/account/edit/game/{id:[0-9]+}", accountHandler.EditGamePage).Methods(http.MethodGet)
	protected.HandleFunc("/account/edit/game/{id:[0-9]+}", accountHandler.EditGame).Methods(http.MethodPost)

	protected.HandleFunc("/addgame/", catalogHandler.AddGamePage).Methods(http.MethodGet)
	protected.HandleFunc("/addgame/", catalogHandler.AddGame).Methods(http.MethodPost)
	protected.HandleFunc("/buygame/{id:[0-9]+}/", purchaseHandler.Buy).Methods(http.MethodPost)

	protected.HandleFunc("/payment/success/", purchaseHandler.Success).Methods(http.MethodGet)
	protected.HandleFunc("/payment/cancel/", purchaseHandler.Cancel).Methods(http.MethodGet)
	protected.HandleFunc("/payment/error/", purchaseHandler.Error).Methods(http.MethodGet)

	return r
}
