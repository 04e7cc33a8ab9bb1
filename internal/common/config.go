package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	LLM         LLMConfig       `toml:"llm"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Ingest      IngestConfig    `toml:"ingest"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // Only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderDisabled answers with the deterministic fallback sentinel
	// without calling any external API. Used for local/demo runs.
	LLMProviderDisabled LLMProvider = "disabled"
)

// LLMConfig contains configuration for the answer-generation provider
type LLMConfig struct {
	Provider     LLMProvider `toml:"provider"`      // "claude", "gemini", or "disabled" (default: "disabled")
	Model        string      `toml:"model"`         // Provider model name (provider-specific default when empty)
	APIKey       string      `toml:"api_key"`       // API key (ANTHROPIC_API_KEY / GEMINI_API_KEY also honored)
	MaxTokens    int         `toml:"max_tokens"`    // Maximum tokens in response (default: 1024)
	Timeout      string      `toml:"timeout"`       // Operation timeout as duration string (default: "2m")
	Temperature  float32     `toml:"temperature"`   // Completion temperature (default: 0)
	ContextChars int         `toml:"context_chars"` // Character budget for the retrieval context (default: 24000)
	MaxCitations int         `toml:"max_citations"` // Default citation cap before coverage extension (default: 3)
}

// RetrievalConfig contains configuration for the passage retrieval backend
type RetrievalConfig struct {
	Backend string `toml:"backend"` // "store" (lexical over BadgerDB) or "disabled"
	TopK    int    `toml:"top_k"`   // Passages retrieved per question (default: 8)
}

// IngestConfig contains configuration for the ClinicalTrials.gov ingestion pipeline
type IngestConfig struct {
	Enabled    bool                `toml:"enabled"`     // Run ingestion on the configured schedule
	Schedule   string              `toml:"schedule"`    // Cron schedule for refresh runs
	BaseURL    string              `toml:"base_url"`    // ClinicalTrials.gov API base URL
	QueryTerms []string            `toml:"query_terms"` // query.term values sent to the API
	Filters    map[string][]string `toml:"filters"`     // Additional API filter parameters
	MaxStudies int                 `toml:"max_studies"` // Cap on studies fetched per run (default: 200)
	PageSize   int                 `toml:"page_size"`   // Studies per API page (default: 50)
	ChunkChars int                 `toml:"chunk_chars"` // Target passage chunk size in characters (default: 2000)
	RateLimit  float64             `toml:"rate_limit"`  // API requests per second (default: 2)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in trialwhisperer.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		LLM: LLMConfig{
			Provider:     LLMProviderDisabled, // No external calls until a provider is configured
			MaxTokens:    1024,
			Timeout:      "2m",
			Temperature:  0, // Deterministic completions suit grounded QA
			ContextChars: 24000,
			MaxCitations: 3,
		},
		Retrieval: RetrievalConfig{
			Backend: "store",
			TopK:    8,
		},
		Ingest: IngestConfig{
			Enabled:    false,            // User must explicitly opt in to scheduled refresh
			Schedule:   "0 0 */12 * * *", // Every 12 hours (cron format with seconds)
			BaseURL:    "https://clinicaltrials.gov/api/v2",
			MaxStudies: 200,
			PageSize:   50,
			ChunkChars: 2000,
			RateLimit:  2,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files. CLI flag overrides are
// applied afterwards by ApplyFlagOverrides (highest priority).
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRIALWHISPERER_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("TRIALWHISPERER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TRIALWHISPERER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if path := os.Getenv("TRIALWHISPERER_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	// Logging configuration
	if level := os.Getenv("TRIALWHISPERER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// LLM configuration
	if provider := os.Getenv("TRIALWHISPERER_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}
	if model := os.Getenv("TRIALWHISPERER_LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if key := os.Getenv("TRIALWHISPERER_LLM_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}

	// Provider-native key variables are honored as fallbacks so the
	// standard SDK environment setup keeps working.
	if config.LLM.APIKey == "" {
		switch config.LLM.Provider {
		case LLMProviderClaude:
			config.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case LLMProviderGemini:
			config.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	// Retrieval configuration
	if backend := os.Getenv("TRIALWHISPERER_RETRIEVAL_BACKEND"); backend != "" {
		config.Retrieval.Backend = backend
	}
	if topK := os.Getenv("TRIALWHISPERER_RETRIEVAL_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil && k > 0 {
			config.Retrieval.TopK = k
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
