package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	if limit > 0 && len(all) > limit {
		all = all[:limit]
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

func TestRunStoresNormalizedPassages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid := studyJSON("NCT01234567")
		noID := studyJSON("")
		page := map[string]interface{}{
			"studies": []interface{}{valid, noID},
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := NewClient(common.GetLogger(), WithBaseURL(server.URL), WithRateLimit(1000))
	storage := newMemoryStorage()
	config := &common.IngestConfig{QueryTerms: []string{"glioblastoma"}, ChunkChars: 2000}

	stats, err := NewService(client, storage, config, common.GetLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if stats.StudiesFetched != 2 {
		t.Errorf("StudiesFetched = %d, want 2", stats.StudiesFetched)
	}
	if stats.TrialsStored != 1 {
		t.Errorf("TrialsStored = %d, want 1", stats.TrialsStored)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (study without NCT identifier)", stats.Skipped)
	}
	if stats.PassagesStored == 0 {
		t.Error("expected stored passages")
	}

	stored := storage.passages["NCT01234567"]
	if len(stored) == 0 {
		t.Fatal("no passages stored for NCT01234567")
	}
	if stored[0].Section != "title" {
		t.Errorf("first section = %q, want title", stored[0].Section)
	}

	if _, err := storage.Get(context.Background(), interfaces.KeyIngestLastUpdated); err != nil {
		t.Errorf("ingestion watermark not recorded: %v", err)
	}
}
