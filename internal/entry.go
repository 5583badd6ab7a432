// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sanhik/contentos/internal/ai"
	"github.com/sanhik/contentos/internal/api"
	"github.com/sanhik/contentos/internal/auth"
	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/ingest"
	"github.com/sanhik/contentos/internal/profile"
	"github.com/sanhik/contentos/internal/sharing"
	"github.com/sanhik/contentos/internal/sse"
	"github.com/sanhik/contentos/internal/storage"
	"github.com/sanhik/contentos/internal/vcs"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure store directories exist.
	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Store.dataDir(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Initialize storage and the versioned repository on top of it.
	store, err := storage.NewFS(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	repo := vcs.NewRepository(store)

	// Initialize SQLite catalog.
	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := catalog.Sync(db, repo, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Sidecar stores: users, share links, reader profiles.
	users, err := auth.NewStore(cfg.Store.UsersPath(), cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("init user store: %w", err)
	}
	links, err := sharing.NewStore(cfg.Store.ShareLinksPath())
	if err != nil {
		return fmt.Errorf("init share links: %w", err)
	}
	profiles, err := profile.NewStore(cfg.Store.ProfilesDir())
	if err != nil {
		return fmt.Errorf("init profile store: %w", err)
	}

	// Generation backend is optional; the CMS core runs without it.
	var gen ai.Generator
	if cfg.AI.Enabled() {
		gen = ai.NewClient(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Keyring())
		logger.Info("generation backend enabled", slog.String("model", cfg.AI.Model))
	} else {
		logger.Info("generation backend disabled, no usable API key")
	}
	var ingestClient *ingest.Client
	if cfg.Ingest.BaseURL != "" {
		ingestClient = ingest.NewClient(cfg.Ingest.BaseURL)
	}

	// Build the service and the API router.
	svc := contentservice.NewService(repo, db, gen, broker, logger)
	handler := api.NewHandler(svc, links, profiles)

	var aiHandler *api.AIHandler
	if gen != nil || ingestClient != nil {
		aiHandler = api.NewAIHandler(handler, gen, ingestClient)
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, auth.TokenTTL)
	apiRouter := api.NewRouter(api.RouterDeps{
		Handler:     handler,
		AI:          aiHandler,
		Auth:        api.NewAuthHandler(users, tokens),
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Tokens:      tokens,
		SSE:         broker,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start store watcher with SSE callback.
	g.Go(func() error {
		err := catalog.Watch(gCtx, db, repo, cfg.Store.Path, logger, func(kind, folder, projectID string) {
			broker.PublishWatcherEvent(kind, folder, projectID)
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
