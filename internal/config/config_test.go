package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 6*time.Second, cfg.RefillInterval)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, "sportmaps:rl", cfg.Prefix)
}

func TestLoadRateLimitConfigClampsTTL(t *testing.T) {
	t.Setenv("SPORTMAPS_RATE_REFILL_EVERY", "1m")
	t.Setenv("SPORTMAPS_RATE_TTL", "30s")

	cfg := LoadRateLimitConfig()

	require.Equal(t, time.Minute, cfg.RefillInterval)
	assert.Equal(t, 5*time.Minute, cfg.TTL, "idle buckets must outlive five refill intervals")
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{http.MethodGet: true}, cfg.Methods)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
	assert.Equal(t, "sportmaps:cache", cfg.Prefix)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadCacheConfigEnvOverrides(t *testing.T) {
	t.Setenv("SPORTMAPS_CACHE_ENABLED", "false")
	t.Setenv("SPORTMAPS_CACHE_TTL", "90s")
	t.Setenv("SPORTMAPS_CACHE_PREFIX", "sportmaps:dir")

	cfg := LoadCacheConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, "sportmaps:dir", cfg.Prefix)
}
