package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/trialwhisperer/internal/common"
	"github.com/ternarybob/trialwhisperer/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic
// Claude API with bounded retry/backoff on transient errors.
type ClaudeService struct {
	config    *common.LLMConfig
	logger    arbor.ILogger
	client    *anthropic.Client
	retry     *RetryConfig
	timeout   time.Duration
	maxTokens int
}

// NewClaudeService creates a new Claude LLM service instance.
//
// The service initialization includes:
//  1. Setting the default model name if not specified
//  2. Parsing the timeout duration from configuration
//  3. Initializing the Claude client
//
// Parameters:
//   - config: LLM configuration with API key and model settings
//   - logger: Structured logger for service operations
//
// Returns:
//   - *ClaudeService: Initialized service ready for use
//   - error: nil on success, error with details on failure
func NewClaudeService(config *common.LLMConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY, TRIALWHISPERER_LLM_API_KEY, or llm.api_key in config)")
	}

	// Set default model name if not specified
	if config.Model == "" {
		config.Model = "claude-haiku-3-5-20241022"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	// Set default max tokens
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	service := &ClaudeService{
		config:    config,
		logger:    logger,
		client:    &client,
		retry:     NewDefaultRetryConfig(),
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Float64("temperature", float64(config.Temperature)).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return service, nil
}

// Generate produces a raw answer for a question given pre-built context text.
//
// Transient provider errors (rate limits, overload, transient API failures)
// are retried with exponential backoff. After exhausting attempts the method
// returns interfaces.ErrProviderUnavailable so the caller can substitute the
// fallback sentinel answer; non-retryable failures are wrapped in
// interfaces.ErrProvider.
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
func (s *ClaudeService) Generate(ctx context.Context, systemPrompt, contextText, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question cannot be empty", interfaces.ErrProvider)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("context_length", len(contextText)).
		Msg("Starting Claude answer generation")

	var lastErr error
	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := s.retry.CalculateBackoff(attempt-1, ExtractRetryDelay(lastErr))
			s.logger.Warn().
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying Claude request after transient error")
			if err := sleepBackoff(timeoutCtx, backoff); err != nil {
				return "", fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, err)
			}
		}

		response, err := s.generateCompletion(timeoutCtx, systemPrompt, buildUserPrompt(contextText, question))
		if err == nil {
			s.logger.Debug().
				Int("response_length", len(response)).
				Dur("duration", time.Since(startTime)).
				Msg("Claude answer generation completed")
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
		Msg("Claude request failed after exhausting retries")
	return "", fmt.Errorf("%w: %v", interfaces.ErrProviderUnavailable, lastErr)
}

// HealthCheck verifies the Claude service is operational with a minimal probe.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("Claude client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.generateCompletion(healthCheckCtx, "", "ping")
	if err != nil {
		return fmt.Errorf("Claude health check failed: %w", err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	return nil
}

// Provider returns the provider name.
func (s *ClaudeService) Provider() string {
	return string(common.LLMProviderClaude)
}

// Close releases resources and performs cleanup operations.
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	// Claude client doesn't require explicit cleanup
	s.client = nil
	return nil
}

// generateCompletion encapsulates a single Claude API call.
func (s *ClaudeService) generateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}
