package eval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/models"
	"github.com/ternarybob/trialwhisperer/internal/services/answer"
)

// mockAsker implements Asker for testing
type mockAsker struct {
	askFunc func(ctx context.Context, query, nctID string) (*answer.Result, error)
}

func (m *mockAsker) Ask(ctx context.Context, query, nctID string) (*answer.Result, error) {
	return m.askFunc(ctx, query, nctID)
}

func TestLoadExamples(t *testing.T) {
	dataset := `- query: "How many participants are enrolled?"
  nct_id: "NCT01234567"
  answers:
    - "The study plans to enroll 120 participants."
  sections:
    - overview
- query: ""
  nct_id: "NCT00000000"
- query: "What is the minimum age?"
  nct_id: "NCT01234567"
  answers:
    - "At least 18 years of age."
`
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	if err := os.WriteFile(path, []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}

	examples, err := LoadExamples(path)
	if err != nil {
		t.Fatalf("LoadExamples returned error: %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("got %d examples, want 2 (empty query dropped)", len(examples))
	}
	if examples[0].NCTID != "NCT01234567" || len(examples[0].Answers) != 1 {
		t.Errorf("example 0 = %+v", examples[0])
	}
	if examples[0].Sections[0] != "overview" {
		t.Errorf("sections = %v", examples[0].Sections)
	}
}

func TestLoadExamplesMissingFile(t *testing.T) {
	if _, err := LoadExamples(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAnswerExactMatch(t *testing.T) {
	gold := []string{"The study plans to enroll 120 participants."}

	if !AnswerExactMatch("the study plans  to enroll 120 participants.", gold) {
		t.Error("case and whitespace differences should match")
	}
	if AnswerExactMatch("120 participants", gold) {
		t.Error("partial answer should not match")
	}
	if AnswerExactMatch("", gold) {
		t.Error("empty prediction should not match")
	}
}

func TestCitationsMatch(t *testing.T) {
	citations := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview"},
		{NCTID: "NCT01234567", Section: "eligibility.inclusion"},
	}

	if !CitationsMatch(citations, []string{"overview"}, "NCT01234567") {
		t.Error("covered section should match")
	}
	if CitationsMatch(citations, []string{"outcomes"}, "NCT01234567") {
		t.Error("uncovered section should not match")
	}
	if CitationsMatch(citations, []string{"overview"}, "NCT99999999") {
		t.Error("citation from another trial should not match")
	}
	if !CitationsMatch(nil, nil, "NCT01234567") {
		t.Error("examples without expected sections trivially match")
	}
	if CitationsMatch(nil, []string{"overview"}, "NCT01234567") {
		t.Error("no citations cannot cover an expected section")
	}
}

func TestEvaluateAndComputeMetrics(t *testing.T) {
	examples := []Example{
		{
			Query:    "How many participants?",
			NCTID:    "NCT01234567",
			Answers:  []string{"120 participants"},
			Sections: []string{"overview"},
		},
		{
			Query:   "What is the minimum age?",
			NCTID:   "NCT01234567",
			Answers: []string{"At least 18 years of age."},
		},
		{
			Query: "Broken example",
			NCTID: "NCT00000000",
		},
	}

	asker := &mockAsker{
		askFunc: func(ctx context.Context, query, nctID string) (*answer.Result, error) {
			switch query {
			case "How many participants?":
				return &answer.Result{
					Answer:    "120 Participants",
					Citations: []models.Passage{{NCTID: "NCT01234567", Section: "overview"}},
				}, nil
			case "What is the minimum age?":
				return &answer.Result{Answer: "21 years"}, nil
			default:
				return nil, errors.New("no passages")
			}
		},
	}

	records := Evaluate(context.Background(), asker, examples, common.GetLogger())
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	metrics := ComputeMetrics(records)
	if metrics.TotalExamples != 3 {
		t.Errorf("TotalExamples = %d", metrics.TotalExamples)
	}
	if metrics.AnswerCorrect != 1 {
		t.Errorf("AnswerCorrect = %d, want 1", metrics.AnswerCorrect)
	}
	if metrics.CitationApplicable != 1 || metrics.CitationCorrect != 1 {
		t.Errorf("citation counts = %d/%d, want 1/1", metrics.CitationCorrect, metrics.CitationApplicable)
	}
	if metrics.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", metrics.ErrorCount)
	}

	if accuracy, ok := metrics.AnswerAccuracy(); !ok || accuracy < 0.33 || accuracy > 0.34 {
		t.Errorf("AnswerAccuracy = %v, %v", accuracy, ok)
	}
	if _, ok := (Metrics{}).AnswerAccuracy(); ok {
		t.Error("accuracy over zero examples should report ok=false")
	}
}
