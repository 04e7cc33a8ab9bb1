package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface using Google Gemini
// models via the genai SDK.
type GeminiService struct {
	config  *common.LLMConfig
	logger  arbor.ILogger
	client  *genai.Client
	retry   *RetryConfig
	timeout time.Duration
}

// NewGeminiService creates a new Gemini LLM service instance.
//
// The service initialization includes:
//  1. Setting the default model name if not specified
//  2. Parsing the timeout duration from configuration
//  3. Initializing the genai client against the Gemini API backend
//
// Parameters:
//   - config: LLM configuration with API key and model settings
//   - logger: Structured logger for service operations
//
// Returns:
//   - *GeminiService: Initialized service ready for use
//   - error: nil on success, error with details on failure
func NewGeminiService(config *common.LLMConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via GEMINI_API_KEY, TRIALWHISPERER_LLM_API_KEY, or llm.api_key in config)")
	}

	// Set default model name if not specified
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	// Initialize genai client
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		retry:   NewDefaultRetryConfig(),
		timeout: timeout,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Float64("temperature", float64(config.Temperature)).
		Msg("Gemini LLM service initialized successfully")

	return service, nil
}

// Generate produces a raw answer for a question given pre-built context text.
//
// Transient provider errors are retried with exponential backoff, honoring
// any RetryInfo delay embedded in the API error message. Exhausted retries
// surface as interfaces.ErrProviderUnavailable; non-retryable failures are
// wrapped in interfaces.ErrProvider.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - systemPrompt: Grounding instructions for the model
//   - contextText: Numbered retrieval context within the character budget
//   - question: The user's question
//
// Returns:
//   - string: Raw model answer
//   - error: nil on success, error with details on failure
func (s *GeminiService) Generate(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question cannot be empty", interfaces.ErrProvider)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("context_length", len(contextText)).
		Msg("Starting Gemini answer generation")

	var lastErr error
	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := s.retry.CalculateBackoff(attempt-1, ExtractRetryDelay(lastErr))
			s.logger.Warn().
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying Gemini request after transient error")
			if err := sleepBackoff(timeoutCtx, backoff); err != nil {
				return "", fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
			}
		}

		response, err := s.generateCompletion(timeoutCtx, systemPrompt, buildUserPrompt(contextText, question))
		if err == nil {
			s.logger.Debug().
				Int("response_length", len(response)).
				Dur("duration", time.Since(startTime)).
				Msg("Gemini answer generation completed")
			return response, nil
		}

		lastErr = err
		if !IsTransientError(err) {
			return "", fmt.Errorf("%w: %v", interfaces.ErrProvider, err)
		}
	}

	s.logger.Error().
		Err(lastErr).
		Int("attempts", s.retry.MaxAttempts).
		Msg("Gemini request failed after exhausting retries")
	return "", fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, lastErr)
}

// HealthCheck verifies the Gemini service is operational with a minimal probe.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.generateCompletion(healthCheckCtx, "", "ping")
	if err != nil {
		return fmt.Errorf("Gemini health check failed: %w", err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Gemini probe returned empty response")
	}

	return nil
}

// Provider returns the provider name.
func (s *GeminiService) Provider() string {
	return string(common.LLMProviderGemini)
}

// Close releases resources and performs cleanup operations.
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	// genai.Client doesn't require explicit Close
	s.client = nil
	return nil
}

// generateCompletion encapsulates a single Gemini API call.
func (s *GeminiService) generateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(userPrompt)},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}

	return response.String(), nil
}
