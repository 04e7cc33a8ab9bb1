package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
)

// RunStats summarizes one ingestion run.
type RunStats struct {
	StudiesFetched int
	TrialsStored   int
	PassagesStored int
	Skipped        int
	Duration       time.Duration
}

// Service runs the fetch -> normalize -> chunk -> store pipeline against
// the ClinicalTrials.gov Data API.
type Service struct {
	client   *Client
	passages interfaces.PassageStorage
	kv       interfaces.KeyValueStorage
	config   *common.IngestConfig
	logger   arbor.ILogger
	gc       func() error
}

// NewService creates a new ingestion service instance.
func NewService(client *Client, storage interfaces.StorageManager, config *common.IngestConfig, logger arbor.ILogger) *Service {
	s := &Service{
		client:   client,
		passages: storage.PassageStorage(),
		kv:       storage.KeyValueStorage(),
		config:   config,
		logger:   logger,
	}

	// Backends that support value log compaction expose it optionally;
	// an ingestion run rewrites every stored trial, so reclaim afterwards.
	if m, ok := storage.(interface{ RunGC() error }); ok {
		s.gc = m.RunGC
	}

	return s
}

// Run executes one full ingestion pass. Each fetched study is normalized,
// chunked and stored, replacing any previously stored passages for the same
// trial. On success the ingestion watermark is updated in KV storage.
//
// Parameters:
//   - ctx: Context for cancellation control
//
// Returns:
//   - *RunStats: Per-run counts for logging and operational visibility
//   - error: nil on success, error with details on failure
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	runID := uuid.New().String()
	s.logger.Info().
		Str("run_id", runID).
		Int("max_studies", s.config.MaxStudies).
		Int("query_terms", len(s.config.QueryTerms)).
		Msg("Starting ingestion run")

	studies, err := s.client.FetchStudies(ctx, s.config.QueryTerms, s.config.Filters, s.config.MaxStudies)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch studies: %w", err)
	}

	stats := &RunStats{StudiesFetched: len(studies)}
	for _, study := range studies {
		record, ok := Normalize(study)
		if !ok {
			stats.Skipped++
			continue
		}

		passages := ChunkRecord(record, s.config.ChunkChars)
		if len(passages) == 0 {
			stats.Skipped++
			continue
		}

		if err := s.passages.StoreTrialPassages(ctx, record.NCTID, passages); err != nil {
			return stats, fmt.Errorf("failed to store trial %s: %w", record.NCTID, err)
		}

		stats.TrialsStored++
		stats.PassagesStored += len(passages)
	}

	watermark := time.Now().UTC().Format(time.RFC3339)
	if err := s.kv.Set(ctx, interfaces.KeyIngestLastUpdated, watermark, "Timestamp of the last completed ingestion run"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record ingestion watermark")
	}

	if s.gc != nil {
		if err := s.gc(); err != nil {
			s.logger.Warn().Err(err).Msg("Storage compaction after ingestion failed")
		}
	}

	stats.Duration = time.Since(start)
	s.logger.Info().
		Str("run_id", runID).
		Int("studies_fetched", stats.StudiesFetched).
		Int("trials_stored", stats.TrialsStored).
		Int("passages_stored", stats.PassagesStored).
		Int("skipped", stats.Skipped).
		Dur("duration", stats.Duration).
		Msg("Ingestion run completed")

	return stats, nil
}
