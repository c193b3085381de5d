// Package config holds the session configuration for the ideaunpack
// pipeline. Values load once from environment variables at session start
// and are read-only inputs to the core; tests override them through
// ConfigOption functions instead of mutating process-wide state.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"ideaunpack/internal/logging"
)

// Config is the complete session configuration.
type Config struct {
	// Provider assignment per pipeline role.
	CreativeProvider string `env:"UNPACK_CREATIVE_PROVIDER" envDefault:"anthropic"`
	RaterAProvider   string `env:"UNPACK_RATER_A_PROVIDER" envDefault:"openai"`
	RaterBProvider   string `env:"UNPACK_RATER_B_PROVIDER" envDefault:"deepseek"`
	JudgeProvider    string `env:"UNPACK_JUDGE_PROVIDER" envDefault:"deepseek"`

	// Model identifiers per provider.
	AnthropicModel string `env:"UNPACK_ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	OpenAIModel    string `env:"UNPACK_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GeminiModel    string `env:"UNPACK_GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	DeepSeekModel  string `env:"UNPACK_DEEPSEEK_MODEL" envDefault:"deepseek-chat"`

	// Transport settings. Timeout is per outbound call; there is no
	// retry or backoff anywhere in the pipeline.
	Timeout           time.Duration `env:"UNPACK_TIMEOUT" envDefault:"60s"`
	Temperature       float64       `env:"UNPACK_TEMPERATURE" envDefault:"0.7"`
	RequestsPerMinute int           `env:"UNPACK_REQUESTS_PER_MINUTE" envDefault:"30"`

	// Flow settings.
	MaxRefinementCycles int     `env:"UNPACK_MAX_REFINEMENT_CYCLES" envDefault:"3"`
	PlateauThreshold    float64 `env:"UNPACK_PLATEAU_THRESHOLD" envDefault:"0.5"`
	DivergenceThreshold float64 `env:"UNPACK_DIVERGENCE_THRESHOLD" envDefault:"2"`
	WordLimit           int     `env:"UNPACK_WORD_LIMIT" envDefault:"150"`
	MinimumBarFloor     float64 `env:"UNPACK_MINIMUM_BAR_FLOOR" envDefault:"8"`

	LogLevel logging.LogLevel `env:"UNPACK_LOG_LEVEL" envDefault:"WARN"`

	// APIKeys maps provider name to key, collected from *_API_KEY
	// environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY, ...).
	APIKeys map[string]string
}

// ConfigOption mutates a Config during construction.
type ConfigOption func(*Config)

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		APIKeys: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	loadAPIKeys(cfg)
	return cfg, nil
}

func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

// New creates a Config with default values and applies the given options.
// Intended for tests and embedding; Load is the production path.
func New(opts ...ConfigOption) *Config {
	cfg := &Config{
		CreativeProvider:    "anthropic",
		RaterAProvider:      "openai",
		RaterBProvider:      "deepseek",
		JudgeProvider:       "deepseek",
		AnthropicModel:      "claude-sonnet-4-20250514",
		OpenAIModel:         "gpt-4o-mini",
		GeminiModel:         "gemini-1.5-flash",
		DeepSeekModel:       "deepseek-chat",
		Timeout:             60 * time.Second,
		Temperature:         0.7,
		RequestsPerMinute:   30,
		MaxRefinementCycles: 3,
		PlateauThreshold:    0.5,
		DivergenceThreshold: 2,
		WordLimit:           150,
		MinimumBarFloor:     8,
		LogLevel:            logging.LogLevelWarn,
		APIKeys:             make(map[string]string),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ModelFor returns the configured model identifier for a provider name.
func (c *Config) ModelFor(provider string) (string, error) {
	switch provider {
	case "anthropic":
		return c.AnthropicModel, nil
	case "openai":
		return c.OpenAIModel, nil
	case "gemini":
		return c.GeminiModel, nil
	case "deepseek":
		return c.DeepSeekModel, nil
	default:
		return "", fmt.Errorf("no model configured for provider %q", provider)
	}
}

// SetMaxRefinementCycles overrides the refinement cycle ceiling.
func SetMaxRefinementCycles(n int) ConfigOption {
	return func(c *Config) { c.MaxRefinementCycles = n }
}

// SetPlateauThreshold overrides the plateau improvement threshold.
func SetPlateauThreshold(t float64) ConfigOption {
	return func(c *Config) { c.PlateauThreshold = t }
}

// SetDivergenceThreshold overrides the rater divergence threshold.
func SetDivergenceThreshold(t float64) ConfigOption {
	return func(c *Config) { c.DivergenceThreshold = t }
}

// SetWordLimit overrides the per-draft word ceiling.
func SetWordLimit(n int) ConfigOption {
	return func(c *Config) { c.WordLimit = n }
}

// SetMinimumBarFloor overrides the floor under the acceptance bar.
func SetMinimumBarFloor(f float64) ConfigOption {
	return func(c *Config) { c.MinimumBarFloor = f }
}

// SetRequestsPerMinute overrides the outbound pacing rate. Zero disables
// pacing entirely.
func SetRequestsPerMinute(n int) ConfigOption {
	return func(c *Config) { c.RequestsPerMinute = n }
}

// SetTimeout overrides the per-call connection timeout.
func SetTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.Timeout = d }
}

// SetLogLevel overrides the logging verbosity.
func SetLogLevel(level logging.LogLevel) ConfigOption {
	return func(c *Config) { c.LogLevel = level }
}
