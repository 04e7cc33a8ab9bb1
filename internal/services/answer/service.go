package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"github.com/ternarybob/trialwhisperer/internal/models"
)

// ErrNoPassages is returned when retrieval finds nothing to answer from.
var ErrNoPassages = errors.New("no relevant passages found")

// FallbackAnswerFormat is the sentinel answer substituted when the provider
// is unreachable or not configured. Sentinel answers are returned verbatim by
// the aligner rather than re-anchored against source text.
const FallbackAnswerFormat = "[FALLBACK] Unable to reach the language model. Based on %d retrieved passages, see citations."

// qaSystemPrompt instructs the model to answer only from the numbered
// context and to mark the passages it used.
const qaSystemPrompt = `You are a clinical trials assistant. Answer the question using only the numbered trial passages provided as context. Quote the source text as closely as possible and reference the passages you used by their numbers, e.g. (1). If the context does not contain the answer, say so.`

// Service runs the question-answering pipeline: retrieve, budget the
// context, generate, clean, align, cite. Apart from the provider call every
// stage is a pure computation over request-scoped values, so a single
// Service is safe for concurrent requests.
type Service struct {
	llm          interfaces.LLMService
	retrieval    interfaces.RetrievalService
	logger       arbor.ILogger
	contextChars int
	maxCitations int
	topK         int
}

// Result is the outcome of one answered question.
type Result struct {
	Answer    string
	Citations []models.Passage
}

// NewService creates the answer service from the configured provider and
// retrieval backend.
func NewService(llmService interfaces.LLMService, retrievalService interfaces.RetrievalService, config *common.Config, logger arbor.ILogger) *Service {
	contextChars := config.LLM.ContextChars
	if contextChars <= 0 {
		contextChars = DefaultContextChars
	}
	maxCitations := config.LLM.MaxCitations
	if maxCitations <= 0 {
		maxCitations = DefaultMaxCitations
	}
	topK := config.Retrieval.TopK
	if topK <= 0 {
		topK = 8
	}

	return &Service{
		llm:          llmService,
		retrieval:    retrievalService,
		logger:       logger,
		contextChars: contextChars,
		maxCitations: maxCitations,
		topK:         topK,
	}
}

// Ask answers a question about clinical trials, optionally scoped to one
// trial. Returns ErrNoPassages when retrieval finds nothing; provider errors
// other than unavailability are propagated wrapped in
// interfaces.ErrProvider semantics.
func (s *Service) Ask(ctx context.Context, query, nctID string) (*Result, error) {
	startTime := time.Now()

	passages, err := s.retrieval.Retrieve(ctx, query, nctID, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(passages) == 0 {
		return nil, ErrNoPassages
	}

	selected, contextText := SelectForContext(passages, s.contextChars)

	raw, err := s.llm.Generate(ctx, qaSystemPrompt, contextText, query)
	if err != nil {
		if !errors.Is(err, interfaces.ErrProviderUnavailable) {
			return nil, fmt.Errorf("answer generation failed: %w", err)
		}
		// Designed degradation: answer with the deterministic sentinel and
		// still return citations for the retrieved passages.
		s.logger.Warn().Err(err).Msg("LLM provider unavailable, substituting fallback answer")
		raw = fmt.Sprintf(FallbackAnswerFormat, len(passages))
	}

	cleaned := CleanAnswer(raw)
	citations := SelectCitations(cleaned, passages, s.maxCitations)

	// Alignment runs against the citation passages when any were selected,
	// falling back to the full budgeted selection.
	alignmentContext := citations
	if len(alignmentContext) == 0 {
		alignmentContext = selected
	}
	final := AlignAnswer(cleaned, alignmentContext, query)

	s.logger.Debug().
		Int("passages", len(passages)).
		Int("citations", len(citations)).
		Int("answer_length", len(final)).
		Dur("duration", time.Since(startTime)).
		Msg("Question answered")

	return &Result{Answer: final, Citations: citations}, nil
}

// HealthCheck verifies the provider dependency is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llm.HealthCheck(ctx)
}
