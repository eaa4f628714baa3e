package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	ChatModel       string        `env:"CHAT_MODEL"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"tripagent.db"`
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	JWTSecret       string        `env:"JWT_SECRET"`
	MaxToolSteps    int           `env:"MAX_TOOL_STEPS" envDefault:"5"`
	MaxOutputTokens int           `env:"MAX_OUTPUT_TOKENS" envDefault:"1000"`
	ModelTimeout    time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"10m"`
	TimezoneLookup  bool          `env:"TIMEZONE_LOOKUP" envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

var AppConfig Config

// LoadConfig reads an optional .env file and then the process environment
// into AppConfig.
func LoadConfig() error {
	loadDotEnv()

	cfg, err := Load()
	if err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// LoadEnv reads .env and the environment without checking the provider
// settings. Used by commands that never talk to a model.
func LoadEnv() (*Config, error) {
	loadDotEnv()
	return parse()
}

func loadDotEnv() {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return cfg, nil
}

// Load parses the environment into a validated Config.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = 5
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 1000
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 60 * time.Second
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// AuthEnabled reports whether API routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
