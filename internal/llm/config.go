package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// DefaultOpenRouterURL is used when the openrouter provider has no base URL.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// Config holds the AI gateway configuration.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenAIConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also configures OpenAI-compatible endpoints through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenAIConfig{Model: "google/gemini-2.5-flash", BaseURL: DefaultOpenRouterURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv overlays STUDYHALL_* variables onto DefaultConfig. When no
// provider is named it falls back to the first vendor key found in the
// environment (see DiscoverProvider).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Anthropic.APIKey, "STUDYHALL_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "STUDYHALL_ANTHROPIC_MODEL")
	setString(&cfg.OpenAI.APIKey, "STUDYHALL_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "STUDYHALL_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "STUDYHALL_OPENAI_BASE_URL")
	setString(&cfg.Gemini.APIKey, "STUDYHALL_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "STUDYHALL_GEMINI_MODEL")
	setString(&cfg.OpenRouter.APIKey, "STUDYHALL_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "STUDYHALL_OPENROUTER_MODEL")

	if p := os.Getenv("STUDYHALL_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	} else {
		DiscoverProvider(&cfg)
	}
	if d, err := time.ParseDuration(os.Getenv("STUDYHALL_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// DiscoverProvider probes the vendors' own key variables in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and selects the first provider
// whose key is set, unless a STUDYHALL_ key already configures one.
// It reports whether a provider with a key was found.
func DiscoverProvider(cfg *Config) bool {
	if cfg.Validate() == nil {
		return true
	}
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown AI provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider (STUDYHALL_%s_API_KEY)", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// resolveModel maps a short alias to a provider model id. Unknown names are
// passed through so full model ids work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
