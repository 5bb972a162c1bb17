package config

import "time"

// RateLimitConfig parameterizes the token bucket guarding the auth
// endpoints.  Capacity is the burst an idle caller may spend at once;
// RefillTokens per RefillInterval sets the sustained rate.  TTL bounds how
// long an idle bucket survives in Redis and is never allowed below five
// refill intervals, so a bucket cannot expire mid-refill.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig builds the auth-endpoint limiter settings from the
// SPORTMAPS_RATE_* variables.  The defaults allow a burst of 10 and a
// sustained 10 requests per minute per client IP per route: login, register
// and refresh are all pre-authentication, so the key is IP-based rather
// than user-based.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("SPORTMAPS_RATE_ENABLED", true),
		Capacity:       envInt("SPORTMAPS_RATE_BURST", 10),
		RefillTokens:   1,
		RefillInterval: envDur("SPORTMAPS_RATE_REFILL_EVERY", 6*time.Second),
		TTL:            envDur("SPORTMAPS_RATE_TTL", 15*time.Minute),
		KeyStrategy:    envStr("SPORTMAPS_RATE_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("SPORTMAPS_RATE_PREFIX", "sportmaps:rl"),
		Debug:          envBool("SPORTMAPS_RATE_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
