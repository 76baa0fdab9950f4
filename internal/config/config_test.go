package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, FeedSim, cfg.FeedMode)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, 5*time.Second, cfg.QuoteInterval)
	assert.Equal(t, 60*time.Second, cfg.InsightInterval)
	assert.Equal(t, int64(42), cfg.SimSeed)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMPASS_PORT", "9000")
	t.Setenv("COMPASS_SYNC_INTERVAL", "15s")
	t.Setenv("COMPASS_DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.SyncInterval)
	assert.True(t, cfg.DevMode)
}

func TestLoadRejectsBadFeedMode(t *testing.T) {
	t.Setenv("COMPASS_FEED_MODE", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresFeedURL(t *testing.T) {
	t.Setenv("COMPASS_FEED_MODE", "http")

	_, err := Load()
	assert.Error(t, err)
}
