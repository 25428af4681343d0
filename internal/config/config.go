package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all gosh configuration.
type Config struct {
	History    HistoryConfig    `yaml:"history"`
	Editor     EditorConfig     `yaml:"editor"`
	Evaluator  EvaluatorConfig  `yaml:"evaluator"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Logging    LoggingConfig    `yaml:"logging"`
	Usage      UsageConfig      `yaml:"usage"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Path:       filepath.Join("~", ".gosh_history"),
			MaxEntries: DefaultHistoryMaxEntries,
			Append:     true,
		},
		Editor: EditorConfig{
			TabWidth: 4,
		},
		Evaluator: EvaluatorConfig{
			EvalTimeout:  "0s",
			Unrestricted: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join("~", ".gosh", "gosh.log"),
		},
		Usage: UsageConfig{
			Enabled: true,
			File:    filepath.Join("~", ".gosh", "usage.json"),
		},
	}
}

// DefaultPath returns the default config file location, ~/.gosh/config.yaml.
func DefaultPath() string {
	return ExpandHome(filepath.Join("~", ".gosh", "config.yaml"))
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

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("GOSH_HISTORY_FILE"); path != "" {
		c.History.Path = path
	}
	if limit := os.Getenv("GOSH_HISTORY_MAX"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			c.History.MaxEntries = n
		}
	}
	if level := os.Getenv("GOSH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("GOSH_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if file := os.Getenv("GOSH_USAGE_FILE"); file != "" {
		c.Usage.File = file
	}
	if debug := os.Getenv("GOSH_DEBUG"); debug != "" {
		if on, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = on
		}
	}
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	if c.Editor.TabWidth <= 0 {
		return fmt.Errorf("editor.tab_width must be positive, got %d", c.Editor.TabWidth)
	}
	if c.Evaluator.EvalTimeout != "" {
		if _, err := time.ParseDuration(c.Evaluator.EvalTimeout); err != nil {
			return fmt.Errorf("invalid evaluator.eval_timeout %q: %w", c.Evaluator.EvalTimeout, err)
		}
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	for i, rule := range c.Preprocess.Rules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("preprocess rule %d: invalid pattern %q: %w", i, rule.Pattern, err)
		}
	}

	return nil
}

// GetEvalTimeout returns the per-submission timeout; zero means none.
func (c *Config) GetEvalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Evaluator.EvalTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// HistoryPath returns the history file path with "~" expanded.
func (c *Config) HistoryPath() string {
	return ExpandHome(c.History.Path)
}

// LogPath returns the log file path with "~" expanded.
func (c *Config) LogPath() string {
	return ExpandHome(c.Logging.File)
}

// UsagePath returns the usage statistics file path with "~" expanded.
func (c *Config) UsagePath() string {
	return ExpandHome(c.Usage.File)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
