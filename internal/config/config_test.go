package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "icsgen.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icsgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Europe/Berlin\nmax_tokens: 0\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icsgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSaveNeverWritesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icsgen.yaml")
	cfg := DefaultConfig()
	cfg.APIKey = "sk-secret"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvTimezone, "America/Los_Angeles")
	t.Setenv(EnvMaxTokens, "2048")
	t.Setenv(EnvTemperature, "not-a-number")
	t.Setenv(EnvTimeoutSeconds, "30")
	t.Setenv(EnvLogLevel, "debug")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())

	cfg.Timezone = "Mars/Olympus_Mons"
	loc, err = cfg.Location()
	require.Error(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())
}
