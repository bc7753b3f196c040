package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/gamestore/internal/config"
	"github.com/mcoot/gamestore/internal/dependencies/clock"
	"github.com/mcoot/gamestore/internal/dependencies/random"
	"github.com/mcoot/gamestore/internal/metrics"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/mail"
	"github.com/mcoot/gamestore/internal/services/progress"
	"github.com/mcoot/gamestore/internal/services/purchase"
	"github.com/mcoot/gamestore/internal/storage"
	"github.com/mcoot/gamestore/internal/storage/memory"
	"github.com/mcoot/gamestore/internal/storage/postgres"
	redisstorage "github.com/mcoot/gamestore/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypePostgres = config.StoragePostgres

	SessionStoreMemory = config.SessionsMemory
	SessionStoreRedis  = config.SessionsRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	Sessions storage.SessionStore

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Mail    mail.Sender
	Metrics *metrics.Metrics

	// Services
	AuthService        *auth.Service
	CatalogService     *catalog.Service
	PurchaseController *purchase.Controller
	ProgressService    *progress.Service

	closers []io.Closer
}

// Close releases the database and Redis connections, if any
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// Postgres holds database settings (required if StorageType is "postgres")
	Postgres *postgres.Config
	// SessionStoreType selects where sessions live ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionStoreType string
	// Redis holds Redis connection settings (required if SessionStoreType is "redis")
	Redis *redisstorage.Config
	// SMTP enables real mail delivery. If nil, mail is logged only.
	SMTP *mail.SMTPConfig
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// PurchaseConfig holds the payment service settings (optional)
	// If SID is empty, defaults to purchase.DefaultConfig()
	PurchaseConfig purchase.Config
	// Categories is the valid category set (optional)
	Categories model.Categories
}

// FromProcessConfig translates the process configuration into factory settings
func FromProcessConfig(c config.Config, logger *slog.Logger) Config {
	pg := c.Postgres
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = c.RedisURL

	cfg := Config{
		Logger:           logger,
		StorageType:      c.StorageType,
		Postgres:         &pg,
		SessionStoreType: c.SessionStoreType,
		Redis:            &redisCfg,
		AuthConfig: auth.Config{
			SessionDuration: c.SessionDuration,
			BaseURL:         c.BaseURL,
			MailFrom:        c.Mail.From,
		},
		PurchaseConfig: purchase.Config{
			SID:        c.Payment.SID,
			Secret:     c.Payment.Secret,
			PaymentURL: c.Payment.URL,
			BaseURL:    c.BaseURL,
		},
		Categories: c.Categories,
	}
	if c.Mail.Host != "" {
		cfg.SMTP = &mail.SMTPConfig{
			Host:     c.Mail.Host,
			Port:     c.Mail.Port,
			Username: c.Mail.User,
			Password: c.Mail.Password,
		}
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()
	var closers []io.Closer

	var store storage.Storage
	switch cfg.StorageType {
	case "", StorageTypeMemory:
		store = memory.New()
	case StorageTypePostgres:
		if cfg.Postgres == nil {
			return nil, errors.New("Postgres config required when StorageType is postgres")
		}
		pgStore, err := postgres.New(*cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, pgStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'postgres'", cfg.StorageType)
	}

	var sessions storage.SessionStore
	switch cfg.SessionStoreType {
	case "", SessionStoreMemory:
		sessions = memory.NewSessionStore()
	case SessionStoreRedis:
		if cfg.Redis == nil {
			return nil, errors.New("Redis config required when SessionStoreType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.Redis, clk)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
		sessions = redisStore
		closers = append(closers, redisStore)
	default:
		closeAll(closers)
		return nil, fmt.Errorf("invalid SessionStoreType %q: must be 'memory' or 'redis'", cfg.SessionStoreType)
	}

	var sender mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTP != nil {
		sender = mail.NewSMTPSender(*cfg.SMTP)
	}

	app := newWithDependencies(dependencies{
		storage:  store,
		sessions: sessions,
		clock:    clk,
		random:   rnd,
		mail:     sender,
		metrics:  metrics.New(),
		logger:   logger,
	}, cfg)
	app.closers = closers
	return app, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

type dependencies struct {
	storage  storage.Storage
	sessions storage.SessionStore
	clock    clock.Clock
	random   random.Random
	mail     mail.Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg Config) *App {
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	purchaseCfg := cfg.PurchaseConfig
	if purchaseCfg.SID == "" {
		purchaseCfg = purchase.DefaultConfig()
	}

	authService := auth.New(auth.Dependencies{
		Storage:  deps.storage,
		Sessions: deps.sessions,
		Clock:    deps.clock,
		Random:   deps.random,
		Mail:     deps.mail,
		Logger:   deps.logger,
	}, authCfg)
	catalogService := catalog.New(deps.storage, deps.clock, deps.logger, cfg.Categories)
	purchaseController := purchase.New(deps.storage, deps.clock, deps.logger, deps.metrics, purchaseCfg)
	progressService := progress.New(deps.storage, deps.clock, deps.logger)

	return &App{
		Storage:            deps.storage,
		Sessions:           deps.sessions,
		Clock:              deps.clock,
		Random:             deps.random,
		Mail:               deps.mail,
		Metrics:            deps.metrics,
		AuthService:        authService,
		CatalogService:     catalogService,
		PurchaseController: purchaseController,
		ProgressService:    progressService,
	}
}
