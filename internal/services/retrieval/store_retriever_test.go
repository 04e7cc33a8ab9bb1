package retrieval

import (
	"context"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// fakePassageStorage implements interfaces.PassageStorage for testing
type fakePassageStorage struct {
	byTrial map[string][]models.Passage
	order   []string
}

func newFakePassageStorage() *fakePassageStorage {
	return &fakePassageStorage{byTrial: make(map[string][]models.Passage)}
}

func (f *fakePassageStorage) add(nctID string, passages ...models.Passage) {
	if _, ok := f.byTrial[nctID]; !ok {
		f.order = append(f.order, nctID)
	}
	f.byTrial[nctID] = append(f.byTrial[nctID], passages...)
}

func (f *fakePassageStorage) StoreTrialPassages(ctx context.Context, nctID string, passages []models.Passage) error {
	f.byTrial[nctID] = passages
	return nil
}

func (f *fakePassageStorage) ListByTrial(ctx context.Context, nctID string) ([]models.Passage, error) {
	return f.byTrial[nctID], nil
}

func (f *fakePassageStorage) ListAll(ctx context.Context, limit int) ([]models.Passage, error) {
	var all []models.Passage
	for _, nctID := range f.order {
		all = append(all, f.byTrial[nctID]...)
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakePassageStorage) CountTrials(ctx context.Context) (int, error) {
	return len(f.byTrial), nil
}

func (f *fakePassageStorage) DeleteTrial(ctx context.Context, nctID string) error {
	delete(f.byTrial, nctID)
	return nil
}

func seededRetriever() *StoreRetriever {
	storage := newFakePassageStorage()
	storage.add("NCT00000001",
		models.Passage{NCTID: "NCT00000001", Section: "overview", Text: "The study plans to enroll 120 participants with glioblastoma."},
		models.Passage{NCTID: "NCT00000001", Section: "eligibility.inclusion", Text: "At least 18 years of age."},
		models.Passage{NCTID: "NCT00000001", Section: "status", Text: "The trial is recruiting."},
	)
	storage.add("NCT00000002",
		models.Passage{NCTID: "NCT00000002", Section: "overview", Text: "A melanoma study of pembrolizumab."},
	)
	return NewStoreRetriever(storage, common.GetLogger())
}

func TestRetrieveScopedToTrial(t *testing.T) {
	retriever := seededRetriever()

	got, err := retriever.Retrieve(context.Background(), "How many participants are enrolled in the study?", "NCT00000001", 8)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected results")
	}
	for _, p := range got {
		if p.NCTID != "NCT00000001" {
			t.Errorf("got passage from %s, want NCT00000001 only", p.NCTID)
		}
		if !p.HasScore {
			t.Error("retrieved passage should carry a score")
		}
	}
	if got[0].Section != "overview" {
		t.Errorf("top passage section = %q, want overview", got[0].Section)
	}
}

func TestRetrieveAcrossTrials(t *testing.T) {
	retriever := seededRetriever()

	got, err := retriever.Retrieve(context.Background(), "melanoma pembrolizumab", "", 8)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d passages, want 1", len(got))
	}
	if got[0].NCTID != "NCT00000002" {
		t.Errorf("top passage trial = %s, want NCT00000002", got[0].NCTID)
	}
}

func TestRetrieveSectionBoost(t *testing.T) {
	storage := newFakePassageStorage()
	storage.add("NCT00000001",
		models.Passage{NCTID: "NCT00000001", Section: "description", Text: "Inclusion depends on prior inclusion assessments."},
		models.Passage{NCTID: "NCT00000001", Section: "eligibility.inclusion", Text: "Inclusion requires signed consent."},
	)
	retriever := NewStoreRetriever(storage, common.GetLogger())

	got, err := retriever.Retrieve(context.Background(), "inclusion criteria", "NCT00000001", 8)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d passages, want 2", len(got))
	}
	if got[0].Section != "eligibility.inclusion" {
		t.Errorf("top passage section = %q, section name match should outrank", got[0].Section)
	}
}

func TestRetrieveNoOverlap(t *testing.T) {
	retriever := seededRetriever()

	got, err := retriever.Retrieve(context.Background(), "cardiovascular endpoints", "NCT00000001", 8)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d passages, want none for a non-overlapping query", len(got))
	}
}

func TestRetrieveHonorsK(t *testing.T) {
	retriever := seededRetriever()

	got, err := retriever.Retrieve(context.Background(), "the study trial participants", "NCT00000001", 1)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d passages, want 1", len(got))
	}
}
