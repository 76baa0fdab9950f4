// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// FeedMode selects the market feed implementation.
type FeedMode string

const (
	FeedSim  FeedMode = "sim"  // deterministic simulated quotes
	FeedHTTP FeedMode = "http" // polling an HTTP quote endpoint
	FeedWS   FeedMode = "ws"   // websocket push stream
)

type Config struct {
	Port     int
	DataDir  string
	LogLevel string
	DevMode  bool

	FeedMode    FeedMode
	FeedURL     string
	FeedTimeout time.Duration

	SyncInterval    time.Duration // full reconciliation pass
	QuoteInterval   time.Duration // market quote refresh
	InsightInterval time.Duration // insight regeneration

	SimSeed int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("COMPASS_PORT", 8090),
		DataDir:         getEnv("COMPASS_DATA_DIR", "./data"),
		LogLevel:        getEnv("COMPASS_LOG_LEVEL", "info"),
		DevMode:         getEnvBool("COMPASS_DEV_MODE", false),
		FeedMode:        FeedMode(getEnv("COMPASS_FEED_MODE", string(FeedSim))),
		FeedURL:         getEnv("COMPASS_FEED_URL", ""),
		FeedTimeout:     getEnvDuration("COMPASS_FEED_TIMEOUT", 10*time.Second),
		SyncInterval:    getEnvDuration("COMPASS_SYNC_INTERVAL", 30*time.Second),
		QuoteInterval:   getEnvDuration("COMPASS_QUOTE_INTERVAL", 5*time.Second),
		InsightInterval: getEnvDuration("COMPASS_INSIGHT_INTERVAL", 60*time.Second),
		SimSeed:         int64(getEnvInt("COMPASS_SIM_SEED", 42)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.FeedMode {
	case FeedSim, FeedHTTP, FeedWS:
	default:
		return fmt.Errorf("unknown feed mode %q", c.FeedMode)
	}
	if c.FeedMode != FeedSim && c.FeedURL == "" {
		return fmt.Errorf("feed mode %s requires COMPASS_FEED_URL", c.FeedMode)
	}
	if c.SyncInterval <= 0 || c.QuoteInterval <= 0 || c.InsightInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
