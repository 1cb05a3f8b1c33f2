// ABOUTME: Configuration loading and parsing for the emotia chat client
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Memory   MemoryConfig   `yaml:"memory"`
	Personas PersonasConfig `yaml:"personas"`
	Reply    ReplyConfig    `yaml:"reply"`
	User     UserConfig     `yaml:"user"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the message collection database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MemoryConfig locates the agent memory database
type MemoryConfig struct {
	Path string `yaml:"path"`
}

// PersonasConfig optionally points at a TOML persona pack
type PersonasConfig struct {
	Path string `yaml:"path"`
}

// ReplyConfig holds think-delay bounds for simulated replies
type ReplyConfig struct {
	MinThinkDelay time.Duration `yaml:"-"`
	MaxThinkDelay time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	MinThinkDelayRaw string `yaml:"min_think_delay"`
	MaxThinkDelayRaw string `yaml:"max_think_delay"`
}

// UserConfig identifies the current user
type UserConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Memory.Path == "" {
		return fmt.Errorf("memory.path is required")
	}
	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	if c.Reply.MinThinkDelay < 0 || c.Reply.MaxThinkDelay < 0 {
		return fmt.Errorf("reply delays must not be negative")
	}
	if c.Reply.MaxThinkDelay != 0 && c.Reply.MaxThinkDelay < c.Reply.MinThinkDelay {
		return fmt.Errorf("reply.max_think_delay must not be below reply.min_think_delay")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Reply.MinThinkDelayRaw != "" {
		cfg.Reply.MinThinkDelay, err = time.ParseDuration(cfg.Reply.MinThinkDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing min_think_delay %q: %w", cfg.Reply.MinThinkDelayRaw, err)
		}
	}

	if cfg.Reply.MaxThinkDelayRaw != "" {
		cfg.Reply.MaxThinkDelay, err = time.ParseDuration(cfg.Reply.MaxThinkDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing max_think_delay %q: %w", cfg.Reply.MaxThinkDelayRaw, err)
		}
	}

	return nil
}
