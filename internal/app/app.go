package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/handlers"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/services/documents"
	"github.com/ternarybob/lector/internal/services/engine"
	"github.com/ternarybob/lector/internal/services/extract"
	"github.com/ternarybob/lector/internal/services/housekeeping"
	"github.com/ternarybob/lector/internal/services/metrics"
	"github.com/ternarybob/lector/internal/services/render"
	"github.com/ternarybob/lector/internal/services/rewrite"
	"github.com/ternarybob/lector/internal/services/token"
	badger "github.com/ternarybob/lector/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	Engine          interfaces.DocumentEngine
	Rewriter        interfaces.TextRewriter
	TokenIssuer     interfaces.TokenIssuer
	UsageRecorder   interfaces.UsageRecorder
	DocumentService *documents.Service
	ExtractService  *extract.Service
	PDFService      *render.PDFService
	Housekeeping    *housekeeping.Scheduler

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
	ExtractHandler  *handlers.ExtractHandler
	ViewerHandler   *handlers.ViewerHandler
	StatusHandler   *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.Housekeeping.Start(); err != nil {
		return nil, fmt.Errorf("failed to start housekeeping: %w", err)
	}

	logger.Info().
		Bool("rewrite_enabled", cfg.Rewrite.Enabled).
		Bool("retention_enabled", cfg.Retention.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initStorage() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// API keys may live in a .env file next to the binary; they land in the
	// KV store where secret resolution picks them up.
	if err := a.StorageManager.LoadEnvFile(context.Background(), ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	return nil
}

func (a *App) initServices() error {
	a.UsageRecorder = metrics.NewRecorder(a.StorageManager.KeyValueStorage(), a.Logger)

	a.Engine = engine.NewClient(&a.Config.Engine, a.Logger)

	rewriter, err := rewrite.NewRewriter(a.Config, a.StorageManager, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rewriter: %w", err)
	}
	a.Rewriter = rewriter

	// Viewer credentials are optional; without them the credentials endpoint
	// reports 503.
	if a.Config.Viewer.TokenURL != "" {
		issuer, err := token.NewIssuer(&a.Config.Viewer, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize viewer token issuer: %w", err)
		}
		a.TokenIssuer = issuer
	}

	a.DocumentService = documents.NewService(a.Config, a.StorageManager, a.Engine, a.UsageRecorder, a.Logger)
	a.ExtractService = extract.NewService(a.Config, a.Engine, a.Rewriter, a.UsageRecorder, a.Logger)
	a.PDFService = render.NewPDFService(a.Logger)
	a.Housekeeping = housekeeping.NewScheduler(&a.Config.Retention, a.DocumentService, a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, a.Logger)
	a.ExtractHandler = handlers.NewExtractHandler(a.DocumentService, a.ExtractService, a.PDFService, a.Logger)
	a.ViewerHandler = handlers.NewViewerHandler(a.TokenIssuer, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.DocumentService, a.UsageRecorder, a.Logger)
}

// Close releases application resources.
func (a *App) Close(ctx context.Context) error {
	if a.Housekeeping != nil {
		a.Housekeeping.Stop()
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	a.Logger.Info().Msg("Application shut down")
	return nil
}
