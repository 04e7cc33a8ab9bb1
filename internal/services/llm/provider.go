package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
)

// NewLLMService creates the configured answer-generation provider.
//
// Provider selection:
//   - "claude": Anthropic Claude via the official SDK
//   - "gemini": Google Gemini via the genai SDK
//   - "disabled" (or empty): deterministic fallback-sentinel provider
//
// A cloud provider without an API key falls back to the disabled provider
// with a warning rather than failing startup, so local runs work without
// credentials.
func NewLLMService(config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch config.LLM.Provider {
	case common.LLMProviderClaude:
		if config.LLM.APIKey == "" {
			logger.Warn().Msg("Claude provider selected but no API key configured, answers will use the fallback sentinel")
			return NewDisabledService(logger), nil
		}
		return NewClaudeService(&config.LLM, logger)

	case common.LLMProviderGemini:
		if config.LLM.APIKey == "" {
			logger.Warn().Msg("Gemini provider selected but no API key configured, answers will use the fallback sentinel")
			return NewDisabledService(logger), nil
		}
		return NewGeminiService(&config.LLM, logger)

	case common.LLMProviderDisabled, "":
		return NewDisabledService(logger), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s (supported: claude, gemini, disabled)", config.LLM.Provider)
	}
}

// buildUserPrompt composes the single user message sent to a provider from
// the budgeted context and the question.
func buildUserPrompt(contextText, question string) string {
	if contextText == "" {
		return fmt.Sprintf("Question: %s", question)
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)
}
