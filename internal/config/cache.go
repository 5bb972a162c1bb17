package config

import (
	"net/http"
	"time"
)

// CacheConfig controls the Redis response cache in front of the public
// school directory.  Only the methods in Methods are considered; KeyStrategy
// decides whether the query string joins the route in the cache key.
// Responses larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds the directory-cache settings from the
// SPORTMAPS_CACHE_* variables.  The directory changes rarely, so entries
// default to a five-minute lifetime.  Only GET is ever cached.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("SPORTMAPS_CACHE_ENABLED", true),
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          envDur("SPORTMAPS_CACHE_TTL", 5*time.Minute),
		KeyStrategy:  envStr("SPORTMAPS_CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("SPORTMAPS_CACHE_PREFIX", "sportmaps:cache"),
		MaxBodyBytes: envInt("SPORTMAPS_CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
