// Package config loads runtime configuration from YAML files and environment
// variables and constructs the model and logger the application runs with.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/model/anthropic"
	"github.com/deskmesh/deskmesh/model/openai"
)

// Config holds runtime settings.
type Config struct {
	// Provider selects the model backend: "openai", "anthropic" or "mock".
	Provider string `yaml:"provider"`

	// Model is the provider-specific model name.
	Model string `yaml:"model"`

	// Credential is the provider API key. Usually left empty in files and
	// supplied via environment.
	Credential string `yaml:"credential"`

	// Temperature for generation.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps completion length. Zero means the provider default.
	MaxTokens int `yaml:"max_tokens"`

	// TracingEndpoint is an OTLP collector address for span export. Empty
	// disables export; spans still record locally.
	TracingEndpoint string `yaml:"tracing_endpoint"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// TaskDB is the SQLite path for the task management backend.
	TaskDB string `yaml:"task_db"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		LogLevel:    "info",
		LogFormat:   "text",
		TaskDB:      "taskdesk.db",
	}
}

// Load reads configuration, overlaying defaults with the YAML file at path
// (if non-empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DESKMESH_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("DESKMESH_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("DESKMESH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DESKMESH_TASK_DB"); v != "" {
		c.TaskDB = v
	}

	if c.Credential == "" {
		switch c.Provider {
		case "openai":
			c.Credential = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.Credential = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

// NewModel constructs the configured model backend.
func (c Config) NewModel() (model.Model, error) {
	switch c.Provider {
	case "openai":
		return openai.New(c.Model, func(o *openai.Options) {
			o.APIKey = c.Credential
			o.Temperature = c.Temperature
			o.MaxTokens = c.MaxTokens
		}), nil
	case "anthropic":
		return anthropic.New(c.Model, func(o *anthropic.Options) {
			o.APIKey = c.Credential
			o.Temperature = c.Temperature
			o.MaxTokens = c.MaxTokens
		}), nil
	case "mock":
		return model.NewMockModel(c.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// NewLogger constructs the configured logger.
func (c Config) NewLogger() logging.Logger {
	return logging.NewSlogLogger(logging.ParseLevel(c.LogLevel), c.LogFormat)
}
