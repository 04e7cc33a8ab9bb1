package interfaces

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned by an LLMService when the provider
// cannot be reached after exhausting retries, or when no provider is
// configured. Callers substitute the deterministic fallback sentinel answer
// instead of failing the request.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// ErrProvider is returned for non-retryable provider failures (bad request,
// authentication, unexpected API errors). It surfaces to the API layer as a
// 502-equivalent rather than being silently swallowed.
var ErrProvider = errors.New("llm provider error")

// LLMService defines the interface for answer generation. Implementations
// call a cloud provider with bounded retry/backoff on transient errors.
type LLMService interface {
	// Generate produces a raw answer for a question given pre-built context
	// text. The returned string may contain boilerplate lead-ins and inline
	// citation markers; cleaning is the caller's concern.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - systemPrompt: Grounding instructions for the model
	//   - contextText: Numbered retrieval context within the character budget
	//   - question: The user's question
	//
	// Returns:
	//   - string: Raw model answer
	//   - error: ErrProviderUnavailable after exhausted retries,
	//     ErrProvider for non-retryable failures
	Generate(ctx context.Context, systemPrompt, contextText, question string) (string, error)

	// HealthCheck verifies the provider is operational and can handle requests.
	HealthCheck(ctx context.Context) error

	// Provider returns the configured provider name ("claude", "gemini", "disabled").
	Provider() string

	// Close releases resources and performs cleanup operations.
	Close() error
}
