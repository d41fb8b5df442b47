package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banrakshak/fra-ocr-service/api"
	"github.com/banrakshak/fra-ocr-service/internal/app"
	"github.com/banrakshak/fra-ocr-service/internal/auth"
	"github.com/banrakshak/fra-ocr-service/internal/config"
	"github.com/banrakshak/fra-ocr-service/internal/db"
	"github.com/banrakshak/fra-ocr-service/internal/storage"
	"github.com/banrakshak/fra-ocr-service/internal/tasks"
)

func main() {
	logger := config.NewLogger()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	authService, err := auth.New(cfg.Auth)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database and object storage are optional
	var sink tasks.ResultSink
	if err := db.Init(ctx, logger); err != nil {
		if !errors.Is(err, db.ErrNoDatabase) {
			logger.Warn("database not available, running without persistence", "error", err)
		}
	} else {
		defer db.Close(logger)
		sink = db.ResultSink{}
	}
	if err := storage.Init(ctx, logger); err != nil && !errors.Is(err, storage.ErrNoObjectStorage) {
		logger.Warn("object storage not available, uploads stay local", "error", err)
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		logger.Error("failed to create upload directory", "dir", cfg.Storage.UploadDir, "error", err)
		os.Exit(1)
	}

	comps := app.Build(cfg, "", "", logger)

	store := tasks.NewStore()
	var parser tasks.Parser
	deps := api.Deps{
		Tasks:       store,
		Classifier:  comps.Classifier,
		Synthesizer: comps.Synthesizer,
		Recommender: comps.Recommender,
		Segmenter:   comps.Segmenter,
		Artifacts:   comps.Artifacts,
		Validator:   comps.Validator,
	}
	if cfg.Auth.Enabled {
		deps.Auth = authService
	}
	if comps.Parser != nil {
		parser = comps.Parser
		deps.Parser = comps.Parser
	}

	processor := tasks.NewProcessor(store, parser, comps.Classifier, sink, logger)
	queue := tasks.NewQueue(processor, logger,
		tasks.WithWorkers(cfg.Queue.Workers),
		tasks.WithQueueSize(cfg.Queue.Size),
		tasks.WithJobTimeout(time.Duration(cfg.Queue.TimeoutSeconds)*time.Second),
	)
	deps.Queue = queue

	handler := api.NewHandler(cfg, deps, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting FRA document service",
		"addr", addr,
		"version", api.Version,
		"ocr_engine", cfg.OCR.Engine,
		"ai_provider", cfg.AI.DefaultProvider,
		"database", db.Available(),
		"storage", storage.Available(),
		"auth", cfg.Auth.Enabled,
		"workers", cfg.Queue.Workers,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("queue shutdown failed", "error", err)
	}
}
