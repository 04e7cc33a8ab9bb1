package answer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// mockLLMService implements interfaces.LLMService for testing
type mockLLMService struct {
	generateFunc func(ctx context.Context, systemPrompt, contextText, question string) (string, error)
}

func (m *mockLLMService) Generate(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, systemPrompt, contextText, question)
	}
	return "", nil
}

func (m *mockLLMService) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLMService) Provider() string                      { return "mock" }
func (m *mockLLMService) Close() error                          { return nil }

// mockRetrievalService implements interfaces.RetrievalService for testing
type mockRetrievalService struct {
	retrieveFunc func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error)
}

func (m *mockRetrievalService) Retrieve(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
	if m.retrieveFunc != nil {
		return m.retrieveFunc(ctx, query, nctID, k)
	}
	return nil, nil
}

func newTestService(llm interfaces.LLMService, retrieval interfaces.RetrievalService) *Service {
	return NewService(llm, retrieval, common.NewDefaultConfig(), common.GetLogger())
}

func TestAskAlignsAnswerToSource(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "eligibility.inclusion", Text: "Eligible patients must be at least 18 years of age."},
	}
	llm := &mockLLMService{
		generateFunc: func(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
			return "Answer: At least 18 years of age. (1)", nil
		},
	}
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return passages, nil
		},
	}

	result, err := newTestService(llm, retrieval).Ask(context.Background(), "What is the minimum age for enrollment?", "NCT01234567")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if result.Answer != "Eligible patients must be at least 18 years of age." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if len(result.Citations) == 0 {
		t.Error("expected at least one citation")
	}
}

func TestAskNoPassages(t *testing.T) {
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return nil, nil
		},
	}

	_, err := newTestService(&mockLLMService{}, retrieval).Ask(context.Background(), "anything", "")
	if !errors.Is(err, ErrNoPassages) {
		t.Errorf("err = %v, want ErrNoPassages", err)
	}
}

func TestAskRetrievalError(t *testing.T) {
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return nil, errors.New("store unavailable")
		},
	}

	_, err := newTestService(&mockLLMService{}, retrieval).Ask(context.Background(), "anything", "")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAskSubstitutesFallbackWhenProviderUnavailable(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview", Text: "The study plans to enroll 120 participants."},
		{NCTID: "NCT01234567", Section: "status", Text: "The trial is recruiting."},
	}
	llm := &mockLLMService{
		generateFunc: func(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
			return "", interfaces.ErrProviderUnavailable
		},
	}
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return passages, nil
		},
	}

	result, err := newTestService(llm, retrieval).Ask(context.Background(), "How many participants?", "NCT01234567")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	expected := fmt.Sprintf(FallbackAnswerFormat, len(passages))
	if result.Answer != expected {
		t.Errorf("Answer = %q, want fallback sentinel %q", result.Answer, expected)
	}
	if len(result.Citations) != len(passages) {
		t.Errorf("got %d citations, want %d", len(result.Citations), len(passages))
	}
}

func TestAskPropagatesProviderError(t *testing.T) {
	llm := &mockLLMService{
		generateFunc: func(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
			return "", fmt.Errorf("%w: invalid request", interfaces.ErrProvider)
		},
	}
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return []models.Passage{{NCTID: "NCT01234567", Section: "overview", Text: "text"}}, nil
		},
	}

	_, err := newTestService(llm, retrieval).Ask(context.Background(), "anything", "")
	if !errors.Is(err, interfaces.ErrProvider) {
		t.Errorf("err = %v, want ErrProvider", err)
	}
}

func TestAskPassesBudgetedContextToProvider(t *testing.T) {
	passages := []models.Passage{
		{NCTID: "NCT01234567", Section: "overview", Text: "The study plans to enroll 120 participants."},
	}
	var seenContext string
	llm := &mockLLMService{
		generateFunc: func(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
			seenContext = contextText
			return "120 participants", nil
		},
	}
	retrieval := &mockRetrievalService{
		retrieveFunc: func(ctx context.Context, query, nctID string, k int) ([]models.Passage, error) {
			return passages, nil
		},
	}

	_, err := newTestService(llm, retrieval).Ask(context.Background(), "How many participants are enrolled?", "NCT01234567")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	expected := "(1) [Trial NCT01234567] overview: The study plans to enroll 120 participants."
	if seenContext != expected {
		t.Errorf("context = %q, want %q", seenContext, expected)
	}
}
