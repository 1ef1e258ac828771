package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone      = "America/New_York"
	DefaultModel         = "claude-3-7-sonnet-20250219"
	DefaultAPIURL        = "https://api.anthropic.com/v1/messages"
	DefaultMaxTokens     = 1000
	DefaultTemperature   = 0.1
	DefaultTimeoutSecond = 120
	DefaultOutput        = "event.ics"
	DefaultProdIDService = "icsgen"
	DefaultLogLevel      = "info"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used for the reference time and for start
	// times that do not name a zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Model is the completion model identifier sent to the provider.
	Model string `yaml:"model" json:"model"`

	// APIURL is the Messages endpoint of the completion provider.
	APIURL string `yaml:"api_url" json:"api_url"`

	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// TimeoutSeconds bounds a single completion request.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// Output is the default destination path for the calendar file.
	Output string `yaml:"output" json:"output"`

	// ProdIDService is embedded into the calendar PRODID.
	ProdIDService string `yaml:"prodid_service" json:"prodid_service"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// APIKey is only ever sourced from the environment.
	APIKey string `yaml:"-" json:"-"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:       DefaultTimezone,
		Model:          DefaultModel,
		APIURL:         DefaultAPIURL,
		MaxTokens:      DefaultMaxTokens,
		Temperature:    DefaultTemperature,
		TimeoutSeconds: DefaultTimeoutSecond,
		Output:         DefaultOutput,
		ProdIDService:  DefaultProdIDService,
		LogLevel:       DefaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature < 0 {
		c.Temperature = DefaultTemperature
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSecond
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.ProdIDService == "" {
		c.ProdIDService = DefaultProdIDService
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves Timezone. An unknown name yields the default zone together
// with an error describing the fallback; the returned location is always usable.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc, nil
	}
	def, defErr := time.LoadLocation(DefaultTimezone)
	if defErr != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return def, fmt.Errorf("load timezone %q, using %s: %w", c.Timezone, DefaultTimezone, err)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - An empty path returns the defaults without touching the filesystem.
//   - If the file does not exist a default config is written with 0600
//     permissions and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// The parent directory is created (0700) if needed and the YAML is written
// to a temp file in the same directory, then renamed over path with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icsgen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
