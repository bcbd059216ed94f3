package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MetaDirName is the per-tree metadata directory kept at the repository root.
// It holds the config file and the debug logs, and is never scanned for
// sidecar metadata.
const MetaDirName = ".supergit"

// Config holds all supergit configuration.
type Config struct {
	// LLM gateway configuration
	LLM LLMConfig `yaml:"llm"`

	// Commit authorship
	Commit CommitConfig `yaml:"commit"`

	// Debug logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the LLM gateway.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // anthropic, openai
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// CommitConfig configures the author signature on placement commits.
type CommitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LoggingConfig configures the per-category log files under
// <root>/.supergit/logs.
type LoggingConfig struct {
	Debug      bool     `yaml:"debug"`
	Level      string   `yaml:"level"` // debug, info, warn, error
	Categories []string `yaml:"categories"`
}

// DefaultConfig returns the default configuration. Model and BaseURL stay
// empty here: each provider client carries its own defaults, and a config
// value only overrides them when explicitly set.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "anthropic",
			MaxTokens: 8000,
			Timeout:   "120s",
		},

		Commit: CommitConfig{
			AuthorName:  "supergit",
			AuthorEmail: "supergit@localhost",
		},

		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},
	}
}

// DefaultPath returns the config file path for a tree root.
func DefaultPath(root string) string {
	return filepath.Join(root, MetaDirName, "config.yaml")
}

// LogDir returns the debug log directory for a tree root.
func LogDir(root string) string {
	return filepath.Join(root, MetaDirName, "logs")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. A key only
// applies when it matches the configured provider, so a config file that
// selects openai is not hijacked by a stray ANTHROPIC_API_KEY.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		if c.LLM.Provider == "" {
			c.LLM.Provider = "anthropic"
		}
		if c.LLM.Provider == "anthropic" {
			c.LLM.APIKey = key
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.Provider == "" {
			c.LLM.Provider = "openai"
		}
		if c.LLM.Provider == "openai" {
			c.LLM.APIKey = key
		}
	}

	if model := os.Getenv("SUPERGIT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if base := os.Getenv("SUPERGIT_BASE_URL"); base != "" {
		c.LLM.BaseURL = base
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"anthropic", "openai"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		envVar := "ANTHROPIC_API_KEY"
		if c.LLM.Provider == "openai" {
			envVar = "OPENAI_API_KEY"
		}
		return fmt.Errorf("%w (set %s or llm.api_key in %s)", ErrMissingCredential, envVar, filepath.Join(MetaDirName, "config.yaml"))
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	return nil
}
