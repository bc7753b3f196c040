package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamestore/internal/api"
	"github.com/mcoot/gamestore/internal/config"
	"github.com/mcoot/gamestore/internal/factory"
	"github.com/mcoot/gamestore/internal/web"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	app, err := factory.New(factory.FromProcessConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		CatalogService:     app.CatalogService,
		PurchaseController: app.PurchaseController,
		ProgressService:    app.ProgressService,
		Metrics:            app.Metrics,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		CatalogService:     app.CatalogService,
		PurchaseController: app.PurchaseController,
		ProgressService:    app.ProgressService,
		Metrics:            app.Metrics,
		StaticDir:          findStaticDir(),
		LoginRate:          cfg.LoginRate,
		LoginBurst:         cfg.LoginBurst,
	})

	root := mux.NewRouter()
	root.PathPrefix("/rest/").Handler(apiRouter)
	root.Handle("/healthz", apiRouter)
	root.Handle("/metrics", app.Metrics.Handler())
	root.PathPrefix("/").Handler(webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr()
	server := api.NewServer(root, serverConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", serverConfig.Addr),
		slog.String("storage", cfg.StorageType),
		slog.String("sessions", cfg.SessionStoreType),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// findStaticDir looks for the static files directory. Static serving is off when none exists.
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}
