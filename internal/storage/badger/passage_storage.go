package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// passageRecord is the stored form of a trial passage. The sequence number
// preserves ingestion order within a trial so reads come back deterministic.
type passageRecord struct {
	Key      string    `badgerhold:"key"`
	NCTID    string    `badgerhold:"index"`
	Seq      int       `json:"seq"`
	Section  string    `json:"section"`
	Text     string    `json:"text"`
	StoredAt time.Time `json:"stored_at"`
}

// PassageStorage implements the PassageStorage interface for Badger
type PassageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPassageStorage creates a new PassageStorage instance
func NewPassageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PassageStorage {
	return &PassageStorage{
		db:     db,
		logger: logger,
	}
}

func passageKey(nctID string, seq int) string {
	return fmt.Sprintf("%s:%06d", nctID, seq)
}

func (r *passageRecord) toPassage() models.Passage {
	return models.Passage{
		NCTID:   r.NCTID,
		Section: r.Section,
		Text:    r.Text,
	}
}

// StoreTrialPassages replaces all stored passages for a trial. The previous
// passages are removed first so re-ingestion never leaves stale chunks behind.
func (s *PassageStorage) StoreTrialPassages(ctx context.Context, nctID string, passages []models.Passage) error {
	if nctID == "" {
		return fmt.Errorf("trial identifier is required")
	}

	if err := s.DeleteTrial(ctx, nctID); err != nil {
		return err
	}

	now := time.Now()
	for i, passage := range passages {
		record := passageRecord{
			Key:      passageKey(nctID, i),
			NCTID:    nctID,
			Seq:      i,
			Section:  passage.Section,
			Text:     passage.Text,
			StoredAt: now,
		}
		if err := s.db.Store().Upsert(record.Key, &record); err != nil {
			return fmt.Errorf("failed to store passage %s: %w", record.Key, err)
		}
	}

	s.logger.Debug().
		Str("nct_id", nctID).
		Int("passages", len(passages)).
		Msg("Stored trial passages")

	return nil
}

// ListByTrial returns the stored passages of one trial in ingestion order
func (s *PassageStorage) ListByTrial(ctx context.Context, nctID string) ([]models.Passage, error) {
	var records []passageRecord
	err := s.db.Store().Find(&records, badgerhold.Where("NCTID").Eq(nctID).Index("NCTID").SortBy("Seq"))
	if err != nil {
		return nil, fmt.Errorf("failed to list passages for trial %s: %w", nctID, err)
	}

	passages := make([]models.Passage, 0, len(records))
	for i := range records {
		passages = append(passages, records[i].toPassage())
	}
	return passages, nil
}

// ListAll returns up to limit stored passages across all trials in ingestion
// order (limit <= 0 means no limit)
func (s *PassageStorage) ListAll(ctx context.Context, limit int) ([]models.Passage, error) {
	query := badgerhold.Where("Key").Ne("").SortBy("Key")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []passageRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}

	passages := make([]models.Passage, 0, len(records))
	for i := range records {
		passages = append(passages, records[i].toPassage())
	}
	return passages, nil
}

// CountTrials returns the number of distinct trials with stored passages
func (s *PassageStorage) CountTrials(ctx context.Context) (int, error) {
	var records []passageRecord
	err := s.db.Store().Find(&records, badgerhold.Where("Seq").Eq(0))
	if err != nil {
		return 0, fmt.Errorf("failed to count trials: %w", err)
	}
	return len(records), nil
}

// DeleteTrial removes all passages of one trial
func (s *PassageStorage) DeleteTrial(ctx context.Context, nctID string) error {
	err := s.db.Store().DeleteMatching(&passageRecord{}, badgerhold.Where("NCTID").Eq(nctID).Index("NCTID"))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete passages for trial %s: %w", nctID, err)
	}
	return nil
}
