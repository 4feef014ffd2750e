// Package config loads planwright's runtime configuration.
//
// Settings come from three layers, later ones winning: built-in defaults,
// <data dir>/config.yaml, and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/planwright/internal/planner"
)

// FileName is the config file looked up inside the data directory.
const FileName = "config.yaml"

// Environment variables that override the file.
const (
	EnvHome     = "PLANWRIGHT_HOME"
	EnvLogLevel = "PLANWRIGHT_LOG_LEVEL"
	EnvAPIKey   = "ANTHROPIC_API_KEY"
	EnvModel    = "PLANWRIGHT_MODEL"
)

const defaultConfigYAML = `# planwright configuration
# data_dir: ~/.planwright
log_level: info     # debug, info, warn, error
log_format: text    # text or json

anthropic:
  # api_key is usually taken from ANTHROPIC_API_KEY instead.
  model: claude-sonnet-4-5
  max_tokens: 8192
`

// Anthropic configures the planning and chat model.
type Anthropic struct {
	APIKey    string `yaml:"api_key,omitempty"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// Config holds the runtime configuration.
type Config struct {
	DataDir   string    `yaml:"data_dir,omitempty"`
	LogLevel  string    `yaml:"log_level"`
	LogFormat string    `yaml:"log_format"`
	Anthropic Anthropic `yaml:"anthropic"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir(),
		LogLevel:  "info",
		LogFormat: "text",
		Anthropic: Anthropic{
			Model:     planner.DefaultModel,
			MaxTokens: planner.DefaultMaxTokens,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".planwright")
}

// Load builds the configuration. path names the YAML file; when empty it is
// <data dir>/config.yaml, where the data dir honours PLANWRIGHT_HOME. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if home := os.Getenv(EnvHome); home != "" {
		cfg.DataDir = home
	}
	if path == "" {
		path = filepath.Join(cfg.DataDir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.DataDir = expandHome(cfg.DataDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables. PLANWRIGHT_HOME
// is applied again so it also wins over data_dir in the file.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHome); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Anthropic.Model = v
	}
}

// Validate checks enumerated fields and limits.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: must be text or json", c.LogFormat))
	}
	if c.Anthropic.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("anthropic.max_tokens must be positive, got %d", c.Anthropic.MaxTokens))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// HasAPIKey reports whether planning and chat can be enabled.
func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Anthropic.APIKey) != ""
}

// WriteDefault writes a commented starter config to path unless one exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o600); err != nil {
		return false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return true, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
