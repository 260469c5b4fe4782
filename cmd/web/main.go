package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cardbattle/internal/config"
	"cardbattle/internal/eventbus"
	"cardbattle/internal/game"
	"cardbattle/internal/handlers"
	"cardbattle/internal/history"
	"cardbattle/internal/logging"
	"cardbattle/internal/scoring"
	"cardbattle/internal/supply"
	"cardbattle/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "cardbattle-web", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", zap.Error(err))
		}
	}()

	catalog, err := supply.LoadCatalog(supply.DefaultCatalog)
	if err != nil {
		return err
	}
	supplier, err := supply.NewCatalogSupplier(catalog, supply.WithSeed(cfg.SupplySeed))
	if err != nil {
		return err
	}

	storeOpts := game.StoreOptions{
		Rules:    cfg.GameRules(),
		Supplier: supplier,
		Scorer:   scoring.SurvivalScorer{},
		Logger:   logger,

		FinishedTTL: cfg.FinishedTTL,
	}

	var hist handlers.HistoryReader
	if cfg.HistoryPath != "" {
		h, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()
		storeOpts.Recorder = h
		hist = h
		logger.Info("match history enabled", zap.String("path", cfg.HistoryPath))
	}

	if cfg.NATSURL != "" {
		bridge, err := eventbus.Connect(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer func() { _ = bridge.Close() }()
		storeOpts.Sinks = append(storeOpts.Sinks, bridge)
		logger.Info("event bridge enabled", zap.String("url", cfg.NATSURL))
	}

	store := game.NewStore(storeOpts)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return err
	}

	homeHandler := handlers.NewHomeHandler(store, hist, logger)
	gameHandler := handlers.NewGameHandler(store, logger, cfg.BaseURL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	gameHandler.RegisterStreamRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
		homeHandler.RegisterRoutes(r)
		gameHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", "http://localhost"+cfg.Addr()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

//go:embed static/*
var embeddedStatic embed.FS
