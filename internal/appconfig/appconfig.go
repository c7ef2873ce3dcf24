// internal/appconfig/appconfig.go
// Package appconfig manages loading and validating application configuration.
package appconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ProviderOllama identifies the locally hosted Ollama backend.
	ProviderOllama = "ollama"
	// ProviderOpenAI identifies the OpenAI cloud backend.
	ProviderOpenAI = "openai"

	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second
)

// Config represents the top-level application configuration. It is built once
// at process start and handed to the components that need it; there is no
// ambient global lookup.
type Config struct {
	// ModelName is the Ollama model used for question generation and grading.
	ModelName string
	// OpenAIModelName is the model used when the OpenAI provider is active.
	OpenAIModelName string
	// OpenAIAPIKey is the bearer credential for the OpenAI API.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the OpenAI endpoint, e.g. for proxies.
	OpenAIBaseURL string
	// DefaultProvider selects the backend active at startup.
	DefaultProvider string
	// ArticlesDir holds the markdown source documents.
	ArticlesDir string
	// OllamaURL is the base URL of the local Ollama server.
	OllamaURL string
	// LogFile is the path of the application log file.
	LogFile string
	// TimeoutSeconds bounds outbound HTTP requests; 0 applies the default.
	TimeoutSeconds int
	// Debug enables request/response payload logging.
	Debug bool
}

// Load reads the configuration from the environment, merging in a local .env
// file when present, and validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; the environment alone may be complete.
	_ = godotenv.Load()
	return loadFromEnv(viper.New())
}

// loadFromEnv materializes a Config from the given viper instance. Split out
// from Load so tests can drive it with a clean environment.
func loadFromEnv(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("MODEL_NAME", "gemma2:2b")
	v.SetDefault("OPENAI_MODEL_NAME", "gpt-4.1-mini")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("DEFAULT_PROVIDER", ProviderOllama)
	v.SetDefault("ARTICLES_DIR", "./articles")
	v.SetDefault("OLLAMA_URL", "http://localhost:11434")
	v.SetDefault("LOG_FILE", "recall.log")
	v.SetDefault("TIMEOUT_SECONDS", 0)
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		ModelName:       v.GetString("MODEL_NAME"),
		OpenAIModelName: v.GetString("OPENAI_MODEL_NAME"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:   v.GetString("OPENAI_BASE_URL"),
		DefaultProvider: strings.ToLower(strings.TrimSpace(v.GetString("DEFAULT_PROVIDER"))),
		ArticlesDir:     v.GetString("ARTICLES_DIR"),
		OllamaURL:       strings.TrimRight(v.GetString("OLLAMA_URL"), "/"),
		LogFile:         v.GetString("LOG_FILE"),
		TimeoutSeconds:  v.GetInt("TIMEOUT_SECONDS"),
		Debug:           v.GetBool("DEBUG"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings combination. The OpenAI credential is validated
// here, once, and never re-checked mid-session.
func (c *Config) Validate() error {
	switch c.DefaultProvider {
	case ProviderOllama:
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set when DEFAULT_PROVIDER is %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unknown DEFAULT_PROVIDER %q (expected %q or %q)", c.DefaultProvider, ProviderOllama, ProviderOpenAI)
	}
	return nil
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back
// to the default if not specified.
func (c *Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default
// if not set.
func (c *Config) LogFilePath() string {
	if path := strings.TrimSpace(c.LogFile); path != "" {
		return path
	}
	return "recall.log"
}
