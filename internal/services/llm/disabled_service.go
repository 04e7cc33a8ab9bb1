package llm

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
)

// DisabledService is the provider used when no LLM is configured. Generate
// always reports the provider as unavailable so callers substitute the
// deterministic fallback sentinel; everything downstream of the provider
// (cleaning, alignment, citations) still runs.
type DisabledService struct {
	logger arbor.ILogger
}

// NewDisabledService creates the no-op provider.
func NewDisabledService(logger arbor.ILogger) *DisabledService {
	logger.Debug().Msg("LLM provider disabled, answers will use the fallback sentinel")
	return &DisabledService{logger: logger}
}

// Generate always returns interfaces.ErrProviderUnavailable.
func (s *DisabledService) Generate(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
	return "", interfaces.ErrProviderUnavailable
}

// HealthCheck reports the disabled state.
func (s *DisabledService) HealthCheck(ctx context.Context) error {
	return interfaces.ErrProviderUnavailable
}

// Provider returns the provider name.
func (s *DisabledService) Provider() string {
	return "disabled"
}

// Close is a no-op.
func (s *DisabledService) Close() error {
	return nil
}
