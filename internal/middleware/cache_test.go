package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportmaps/sportmaps-server/internal/config"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisCacheServesSecondRequestFromCache(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}

	var hits int32
	e := echo.New()
	e.GET("/v1/schools", func(c echo.Context) error {
		atomic.AddInt32(&hits, 1)
		return c.JSON(http.StatusOK, echo.Map{"items": []string{"one"}})
	}, NewRedisCache(cfg, rdb))

	req := httptest.NewRequest(http.MethodGet, "/v1/schools", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	first := rec.Body.String()

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schools", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, first, rec.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "handler must not run on a cache hit")
}

func TestRedisCacheKeyIncludesQuery(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}

	e := echo.New()
	e.GET("/v1/schools", func(c echo.Context) error {
		return c.String(http.StatusOK, c.QueryParam("city"))
	}, NewRedisCache(cfg, rdb))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schools?city=bogota", nil))
	require.Equal(t, "bogota", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schools?city=medellin", nil))
	assert.Equal(t, "medellin", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
	cfg := config.CacheConfig{Enabled: false}

	var hits int32
	e := echo.New()
	e.GET("/v1/schools", func(c echo.Context) error {
		atomic.AddInt32(&hits, 1)
		return c.String(http.StatusOK, "ok")
	}, NewRedisCache(cfg, nil))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/schools", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestTokenBucketBlocksWhenDrained(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}

	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewTokenBucket(cfg, nil))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
