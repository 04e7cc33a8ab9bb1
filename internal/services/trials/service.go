package trials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// ErrTrialNotFound is returned when no passages are stored for a trial.
var ErrTrialNotFound = errors.New("trial not found")

// Service reconstructs trial-level views from the stored passage corpus.
type Service struct {
	passages interfaces.PassageStorage
	kv       interfaces.KeyValueStorage
	config   *common.Config
	logger   arbor.ILogger
}

// NewService creates a new trials service instance.
func NewService(storage interfaces.StorageManager, config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		passages: storage.PassageStorage(),
		kv:       storage.KeyValueStorage(),
		config:   config,
		logger:   logger,
	}
}

// GetTrial returns the metadata of one trial assembled from its stored
// passages. Chunked sections are rejoined in ingestion order under the base
// section label.
//
// Parameters:
//   - ctx: Context for cancellation control
//   - nctID: ClinicalTrials.gov identifier (e.g. "NCT01234567")
//
// Returns:
//   - *models.TrialMetadata: Trial view keyed by section label
//   - error: ErrTrialNotFound when no passages are stored for the trial
func (s *Service) GetTrial(ctx context.Context, nctID string) (*models.TrialMetadata, error) {
	passages, err := s.passages.ListByTrial(ctx, nctID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trial %s: %w", nctID, err)
	}
	if len(passages) == 0 {
		return nil, ErrTrialNotFound
	}

	metadata := &models.TrialMetadata{
		ID:       nctID,
		TrialURL: fmt.Sprintf("https://clinicaltrials.gov/study/%s", nctID),
		Sections: make(map[string]string),
	}

	// Chunked sections share a label; rejoin them in ingestion order.
	for _, passage := range passages {
		if existing, ok := metadata.Sections[passage.Section]; ok {
			metadata.Sections[passage.Section] = existing + "\n" + passage.Text
		} else {
			metadata.Sections[passage.Section] = passage.Text
		}
	}

	if title, ok := metadata.Sections["title"]; ok {
		metadata.Title = title
	}

	return metadata, nil
}

// CriteriaForTrial collects the eligibility criteria text of one trial.
// Inclusion criteria come from sections prefixed "eligibility.inclusion",
// exclusion criteria from "eligibility.exclusion".
func (s *Service) CriteriaForTrial(ctx context.Context, nctID string) (models.Criteria, error) {
	passages, err := s.passages.ListByTrial(ctx, nctID)
	if err != nil {
		return models.Criteria{}, fmt.Errorf("failed to load trial %s: %w", nctID, err)
	}
	if len(passages) == 0 {
		return models.Criteria{}, ErrTrialNotFound
	}

	var criteria models.Criteria
	for _, passage := range passages {
		switch {
		case strings.HasPrefix(passage.Section, "eligibility.inclusion"):
			criteria.Inclusion = append(criteria.Inclusion, passage.Text)
		case strings.HasPrefix(passage.Section, "eligibility.exclusion"):
			criteria.Exclusion = append(criteria.Exclusion, passage.Text)
		}
	}

	return criteria, nil
}

// IngestionSummary describes the currently indexed corpus together with the
// configured ingestion parameters.
func (s *Service) IngestionSummary(ctx context.Context) (*models.IngestionSummary, error) {
	count, err := s.passages.CountTrials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count trials: %w", err)
	}

	summary := &models.IngestionSummary{
		StudyCount: count,
		QueryTerms: s.config.Ingest.QueryTerms,
		Filters:    s.config.Ingest.Filters,
		MaxStudies: s.config.Ingest.MaxStudies,
	}

	lastUpdated, err := s.kv.Get(ctx, interfaces.KeyIngestLastUpdated)
	if err == nil {
		summary.LastUpdated = lastUpdated
	} else if !errors.Is(err, interfaces.ErrKeyNotFound) {
		s.logger.Warn().Err(err).Msg("Failed to read ingestion watermark")
	}

	return summary, nil
}
