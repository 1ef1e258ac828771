package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey         = "ANTHROPIC_API_KEY"
	EnvTimezone       = "ICSGEN_TIMEZONE"
	EnvModel          = "ICSGEN_MODEL"
	EnvMaxTokens      = "ICSGEN_MAX_TOKENS"
	EnvTemperature    = "ICSGEN_TEMPERATURE"
	EnvAPIURL         = "ICSGEN_API_URL"
	EnvTimeoutSeconds = "ICSGEN_TIMEOUT_SECONDS"
	EnvLogLevel       = "ICSGEN_LOG_LEVEL"
)

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ApplyEnv overlays environment variables on top of c. Values that fail to
// parse leave the current setting untouched.
func (c *Config) ApplyEnv() {
	c.APIKey = getEnvOrDefault(EnvAPIKey, c.APIKey)
	c.Timezone = getEnvOrDefault(EnvTimezone, c.Timezone)
	c.Model = getEnvOrDefault(EnvModel, c.Model)
	c.APIURL = getEnvOrDefault(EnvAPIURL, c.APIURL)
	c.MaxTokens = getEnvAsIntOrDefault(EnvMaxTokens, c.MaxTokens)
	c.Temperature = getEnvAsFloatOrDefault(EnvTemperature, c.Temperature)
	c.TimeoutSeconds = getEnvAsIntOrDefault(EnvTimeoutSeconds, c.TimeoutSeconds)
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.Normalize()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
