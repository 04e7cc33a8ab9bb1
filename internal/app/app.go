package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/handlers"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/services/answer"
	"github.com/ternarybob/trialwhisperer/internal/services/eligibility"
	"github.com/ternarybob/trialwhisperer/internal/services/ingest"
	"github.com/ternarybob/trialwhisperer/internal/services/llm"
	"github.com/ternarybob/trialwhisperer/internal/services/retrieval"
	"github.com/ternarybob/trialwhisperer/internal/services/trials"
	"github.com/ternarybob/trialwhisperer/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	LLMService         interfaces.LLMService
	RetrievalService   interfaces.RetrievalService
	AnswerService      *answer.Service
	TrialService       *trials.Service
	EligibilityService *eligibility.Service

	// Ingestion pipeline
	IngestService   *ingest.Service
	IngestScheduler *ingest.Scheduler

	// HTTP handlers
	APIHandler         *handlers.APIHandler
	AskHandler         *handlers.AskHandler
	TrialHandler       *handlers.TrialHandler
	EligibilityHandler *handlers.EligibilityHandler
	MetadataHandler    *handlers.MetadataHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if cfg.Ingest.Enabled {
		if err := app.IngestScheduler.Start(cfg.Ingest.Schedule); err != nil {
			return nil, fmt.Errorf("failed to start ingestion scheduler: %w", err)
		}
	}

	logger.Info().
		Str("llm_provider", app.LLMService.Provider()).
		Str("retrieval_backend", cfg.Retrieval.Backend).
		Bool("ingest_enabled", cfg.Ingest.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services
func (a *App) initServices() error {
	llmService, err := llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}
	a.LLMService = llmService

	retrievalService, err := retrieval.NewRetrievalService(a.Config, a.StorageManager, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create retrieval service: %w", err)
	}
	a.RetrievalService = retrievalService

	a.AnswerService = answer.NewService(a.LLMService, a.RetrievalService, a.Config, a.Logger)
	a.TrialService = trials.NewService(a.StorageManager, a.Config, a.Logger)
	a.EligibilityService = eligibility.NewService(a.Logger)

	ingestClient := ingest.NewClient(a.Logger,
		ingest.WithBaseURL(a.Config.Ingest.BaseURL),
		ingest.WithRateLimit(a.Config.Ingest.RateLimit),
		ingest.WithPageSize(a.Config.Ingest.PageSize),
	)
	a.IngestService = ingest.NewService(ingestClient, a.StorageManager, &a.Config.Ingest, a.Logger)
	a.IngestScheduler = ingest.NewScheduler(a.IngestService, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AskHandler = handlers.NewAskHandler(a.AnswerService, a.Logger)
	a.TrialHandler = handlers.NewTrialHandler(a.TrialService, a.Logger)
	a.EligibilityHandler = handlers.NewEligibilityHandler(a.TrialService, a.EligibilityService, a.Logger)
	a.MetadataHandler = handlers.NewMetadataHandler(a.TrialService, a.Logger)
}

// Close shuts down all application components
func (a *App) Close() error {
	if a.IngestScheduler != nil {
		a.IngestScheduler.Stop()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	return nil
}
