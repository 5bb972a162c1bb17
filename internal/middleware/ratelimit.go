package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sportmaps/sportmaps-server/internal/config"
)

// bucketScript refills and debits one token atomically.  State lives in a
// Redis hash per key; a missing hash starts as a full bucket.  Returns
// {allowed, tokens_left, retry_after_ms}.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local refill_ms = tonumber(ARGV[4])
	local ttl_s = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
	local tokens = tonumber(state[1])
	local refilled = tonumber(state[2])
	if tokens == nil or refilled == nil then
		tokens = capacity
		refilled = now_ms
	end

	if refill_ms > 0 and refill_tokens > 0 then
		local steps = math.floor(math.max(0, now_ms - refilled) / refill_ms)
		if steps > 0 then
			tokens = math.min(capacity, tokens + steps * refill_tokens)
			refilled = refilled + steps * refill_ms
		end
	end

	local allowed = 0
	local retry_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.max(0, refill_ms - (now_ms - refilled))
	end

	redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
	redis.call('EXPIRE', key, ttl_s)
	return { allowed, tokens, retry_ms }
`)

// NewTokenBucket rate-limits the auth endpoints through a shared Redis
// token bucket, so the limit holds across replicas.  A Redis failure lets
// the request through: losing the brake must not take login down with it.
// With limiting disabled or no Redis client the middleware is a
// pass-through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := bucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(vals) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("rate limiter unavailable for %s: %v", key, err)
				}
				return next(c)
			}
			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int((retryMs + 999) / 1000)
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// rateKey scopes the bucket per the configured strategy.  Auth routes are
// pre-authentication, so the default "ip_route" keys on client IP and the
// matched route; "user_route" is for limits behind JWTAuth and "ip" for a
// single global per-client budget.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return cfg.Prefix + ":ip:" + ip
	case "user_route":
		return cfg.Prefix + ":user:" + ratedUserID(c) + ":route:" + route
	default: // "ip_route"
		return cfg.Prefix + ":ip:" + ip + ":route:" + route
	}
}

func ratedUserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
