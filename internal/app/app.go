// Package app initializes and orchestrates the main components of the
// application: configuration, analyzers, job workers and the webhook server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/professor/internal/analyzer"
	"github.com/sevigo/professor/internal/config"
	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/db"
	"github.com/sevigo/professor/internal/jobs"
	"github.com/sevigo/professor/internal/llm"
	"github.com/sevigo/professor/internal/scm"
	"github.com/sevigo/professor/internal/server"
	"github.com/sevigo/professor/internal/storage"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher *jobs.Dispatcher
	dbCleanup  func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application",
		"llm_provider", cfg.LLMProvider,
		"llm_model", cfg.LLMModelName,
		"max_workers", cfg.MaxWorkers)

	provider, err := llm.New(cfg.LLMProvider, llm.Options{
		Model:  cfg.LLMModelName,
		Host:   cfg.LLMHost,
		APIKey: cfg.LLMAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	router := analyzer.NewRouter()
	router.RegisterGlobal(analyzer.NewSecurityAnalyzer(logger))
	router.RegisterGlobal(llm.NewAnalyzer(provider, logger))

	var reviewStore storage.ReviewStore
	dbCleanup := func() {}
	if cfg.DatabaseDSN != "" {
		dbConn, cleanup, err := db.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		reviewStore = storage.NewReviewStore(dbConn.DB)
		dbCleanup = cleanup
	} else {
		logger.Warn("no database configured, review persistence disabled")
	}

	defaultPolicy := core.DefaultReviewPolicy()
	defaultPolicy.MaxCriticalIssues = cfg.MaxCriticalIssues
	defaultPolicy.MaxHighIssues = cfg.MaxHighIssues

	clientFactory := scm.NewInstallationClientFactory(cfg, logger)
	reviewJob := jobs.NewReviewJob(clientFactory, router, reviewStore, defaultPolicy, logger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxWorkers, logger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, reviewStore, logger)

	logger.Info("application initialized successfully")
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		dispatcher: dispatcher,
		dbCleanup:  dbCleanup,
	}, nil
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting server",
		"server_port", a.cfg.ServerPort,
		"max_workers", a.cfg.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: the HTTP server first so no new
// events arrive, then the dispatcher so in-flight reviews finish, then the
// database pool.
func (a *App) Stop() error {
	a.logger.Info("shutting down services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()
	a.dbCleanup()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("application stopped successfully")
	return nil
}
