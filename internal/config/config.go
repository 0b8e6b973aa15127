package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID           string
	LogLevel            string
	Port                string
	AlphaVantageURL     string
	AlphaVantageKey     string
	AlphaVantageSecret  string
	AlphaVantageTimeout time.Duration
	KMSKeyName          string
	FontURL             string
	StaticDir           string
	TelemetryEnabled    bool
	PacingDelay         time.Duration
}

func New() *Config {
	// a local .env is optional; real deployments set the environment
	_ = godotenv.Load()

	return &Config{
		ProjectID:           os.Getenv("PROJECTID"),
		LogLevel:            os.Getenv("LOGLEVEL"),
		Port:                getEnv("PORT", "8080"),
		AlphaVantageURL:     getEnv("ALPHAVANTAGEURL", "https://www.alphavantage.co"),
		AlphaVantageKey:     os.Getenv("ALPHAVANTAGEKEY"),
		AlphaVantageSecret:  os.Getenv("ALPHAVANTAGESECRET"),
		AlphaVantageTimeout: getDuration("ALPHAVANTAGETIMEOUT", 30*time.Second),
		KMSKeyName:          os.Getenv("KMSKEYNAME"),
		FontURL:             getEnv("FONTURL", "https://fonts.googleapis.com/css2?family=Inter:wght@400;600&display=swap"),
		StaticDir:           getEnv("STATICDIR", "dist"),
		TelemetryEnabled:    getBool("TELEMETRYENABLED", true),
		PacingDelay:         getDuration("PACINGDELAY", 2*time.Second),
	}
}

// CloudEnabled reports whether GCP clients should be created.
func (c *Config) CloudEnabled() bool {
	return c.ProjectID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("1500ms") or bare milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
