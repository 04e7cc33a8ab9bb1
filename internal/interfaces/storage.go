package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/trialwhisperer/internal/models"
)

// ErrKeyNotFound is returned when a key/value pair does not exist
var ErrKeyNotFound = errors.New("key not found")

// KeyIngestLastUpdated is the KV storage key holding the RFC3339 timestamp
// of the last completed ingestion run.
const KeyIngestLastUpdated = "ingest.last_updated"

// KeyValuePair represents a stored key/value entry with metadata
type KeyValuePair struct {
	Key         string    `json:"key" badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PassageStorage persists trial passages produced by the ingestion pipeline
type PassageStorage interface {
	// StoreTrialPassages replaces all stored passages for the passages' trial
	StoreTrialPassages(ctx context.Context, nctID string, passages []models.Passage) error

	// ListByTrial returns the stored passages of one trial in ingestion order
	ListByTrial(ctx context.Context, nctID string) ([]models.Passage, error)

	// ListAll returns up to limit stored passages across all trials in
	// ingestion order (limit <= 0 means no limit)
	ListAll(ctx context.Context, limit int) ([]models.Passage, error)

	// CountTrials returns the number of distinct trials with stored passages
	CountTrials(ctx context.Context) (int, error)

	// DeleteTrial removes all passages of one trial
	DeleteTrial(ctx context.Context, nctID string) error
}

// KeyValueStorage persists small operational values (ingestion watermark etc.)
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, description string) error
	Delete(ctx context.Context, key string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	PassageStorage() PassageStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
