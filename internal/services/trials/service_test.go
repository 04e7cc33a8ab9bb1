package trials

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// memoryStorage implements interfaces.StorageManager for testing
type memoryStorage struct {
	passages map[string][]models.Passage
	kv       map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		passages: make(map[string][]models.Passage),
		kv:       make(map[string]string),
	}
}

func (m *memoryStorage) PassageStorage() interfaces.PassageStorage   { return m }
func (m *memoryStorage) KeyValueStorage() interfaces.KeyValueStorage { return m }
func (m *memoryStorage) Close() error                                { return nil }

func (m *memoryStorage) StoreTrialPassages(ctx context.Context, nctID string, passages []models.Passage) error {
	m.passages[nctID] = passages
	return nil
}

func (m *memoryStorage) ListByTrial(ctx context.Context, nctID string) ([]models.Passage, error) {
	return m.passages[nctID], nil
}

func (m *memoryStorage) ListAll(ctx context.Context, limit int) ([]models.Passage, error) {
	var all []models.Passage
	for _, passages := range m.passages {
		all = append(all, passages...)
	}
	return all, nil
}

func (m *memoryStorage) CountTrials(ctx context.Context) (int, error) {
	return len(m.passages), nil
}

func (m *memoryStorage) DeleteTrial(ctx context.Context, nctID string) error {
	delete(m.passages, nctID)
	return nil
}

func (m *memoryStorage) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.kv[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return value, nil
}

func (m *memoryStorage) Set(ctx context.Context, key, value, description string) error {
	m.kv[key] = value
	return nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	delete(m.kv, key)
	return nil
}

func seededService() (*Service, *memoryStorage) {
	storage := newMemoryStorage()
	storage.passages["NCT01234567"] = []models.Passage{
		{NCTID: "NCT01234567", Section: "title", Text: "A study of radiotherapy in glioblastoma"},
		{NCTID: "NCT01234567", Section: "description", Text: "First part of the description."},
		{NCTID: "NCT01234567", Section: "description", Text: "Second part of the description."},
		{NCTID: "NCT01234567", Section: "eligibility.inclusion", Text: "At least 18 years of age."},
		{NCTID: "NCT01234567", Section: "eligibility.exclusion", Text: "Prior bevacizumab."},
	}
	return NewService(storage, common.NewDefaultConfig(), common.GetLogger()), storage
}

func TestGetTrial(t *testing.T) {
	service, _ := seededService()

	trial, err := service.GetTrial(context.Background(), "NCT01234567")
	if err != nil {
		t.Fatalf("GetTrial returned error: %v", err)
	}
	if trial.ID != "NCT01234567" {
		t.Errorf("ID = %q", trial.ID)
	}
	if trial.Title != "A study of radiotherapy in glioblastoma" {
		t.Errorf("Title = %q", trial.Title)
	}
	if trial.TrialURL != "https://clinicaltrials.gov/study/NCT01234567" {
		t.Errorf("TrialURL = %q", trial.TrialURL)
	}
	if trial.Sections["description"] != "First part of the description.\nSecond part of the description." {
		t.Errorf("description = %q, chunks should be rejoined", trial.Sections["description"])
	}
}

func TestGetTrialNotFound(t *testing.T) {
	service, _ := seededService()

	_, err := service.GetTrial(context.Background(), "NCT99999999")
	if !errors.Is(err, ErrTrialNotFound) {
		t.Errorf("err = %v, want ErrTrialNotFound", err)
	}
}

func TestCriteriaForTrial(t *testing.T) {
	service, _ := seededService()

	criteria, err := service.CriteriaForTrial(context.Background(), "NCT01234567")
	if err != nil {
		t.Fatalf("CriteriaForTrial returned error: %v", err)
	}
	if len(criteria.Inclusion) != 1 || criteria.Inclusion[0] != "At least 18 years of age." {
		t.Errorf("Inclusion = %v", criteria.Inclusion)
	}
	if len(criteria.Exclusion) != 1 || criteria.Exclusion[0] != "Prior bevacizumab." {
		t.Errorf("Exclusion = %v", criteria.Exclusion)
	}
}

func TestIngestionSummary(t *testing.T) {
	service, storage := seededService()
	storage.kv[interfaces.KeyIngestLastUpdated] = "2024-01-15T03:00:00Z"

	summary, err := service.IngestionSummary(context.Background())
	if err != nil {
		t.Fatalf("IngestionSummary returned error: %v", err)
	}
	if summary.StudyCount != 1 {
		t.Errorf("StudyCount = %d, want 1", summary.StudyCount)
	}
	if summary.LastUpdated != "2024-01-15T03:00:00Z" {
		t.Errorf("LastUpdated = %q", summary.LastUpdated)
	}
}

func TestIngestionSummaryNoWatermark(t *testing.T) {
	service, _ := seededService()

	summary, err := service.IngestionSummary(context.Background())
	if err != nil {
		t.Fatalf("IngestionSummary returned error: %v", err)
	}
	if summary.LastUpdated != "" {
		t.Errorf("LastUpdated = %q, want empty before any ingestion run", summary.LastUpdated)
	}
}
