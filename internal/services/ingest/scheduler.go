package ingest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Scheduler handles periodic corpus refresh runs
type Scheduler struct {
	service *Service
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewScheduler creates a new ingestion scheduler
func NewScheduler(service *Service, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		service: service,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
	}
}

// Start begins the scheduled ingestion
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		// Default: daily at 03:00
		schedule = "0 0 3 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runIngestion()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Ingestion scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Ingestion scheduler stopped")
}

// RunNow triggers an immediate ingestion run
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate ingestion run")
	go s.runIngestion()
}

func (s *Scheduler) runIngestion() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info().Msg("Starting scheduled ingestion")

	stats, err := s.service.Run(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled ingestion failed")
		return
	}

	s.logger.Info().
		Int("trials_stored", stats.TrialsStored).
		Int("passages_stored", stats.PassagesStored).
		Dur("duration", stats.Duration).
		Msg("Scheduled ingestion completed")
}
