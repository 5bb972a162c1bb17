package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sportmaps/sportmaps-server/internal/config"
)

// recordingWriter tees the response into a buffer while it streams to the
// client.  Bytes past the limit are sent but not recorded; the oversize
// flag keeps the truncated capture out of the cache.
type recordingWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	oversize bool
}

func (w *recordingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if !w.oversize {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.oversize = true
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey hashes the request identity under the configured prefix.  The
// "route" strategy keys on the matched route alone; the default
// "route_query" also folds in the raw query string, so /v1/schools?city=X
// and ?city=Y cache independently.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	ident := c.Path()
	if strings.ToLower(cfg.KeyStrategy) != "route" {
		ident += "?" + c.Request().URL.RawQuery
	}
	sum := sha1.Sum([]byte(ident))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// Stored entry layout: 4-byte status, 4-byte header length, header JSON,
// then the raw body.  Replaying headers verbatim keeps a HIT
// byte-identical to the MISS that produced it.
func packEntry(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	copy(out[8:], hdr)
	copy(out[8+len(hdr):], body)
	return out, nil
}

func unpackEntry(raw []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(raw) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(raw[0:4]))
	hlen := int(binary.BigEndian.Uint32(raw[4:8]))
	if hlen < 0 || 8+hlen > len(raw) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(raw[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, raw[8+hlen:], true
}

// NewRedisCache caches successful directory responses in Redis and replays
// them with an X-Cache: HIT marker.  Only configured methods participate
// and only status 200 is stored.  With caching disabled or no Redis client
// the middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if status, hdr, body, ok := unpackEntry(raw); ok {
					for k, vals := range hdr {
						// Echo recomputes Content-Length from the body.
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			}

			rw := &recordingWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = rw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rw.status == http.StatusOK && !rw.oversize {
				hdr := make(http.Header, len(c.Response().Header()))
				for k, vals := range c.Response().Header() {
					hdr[k] = append([]string(nil), vals...)
				}
				if entry, err := packEntry(rw.status, hdr, rw.buf.Bytes()); err == nil {
					// The request context may already be done; the store
					// should still land.
					_ = rdb.SetEx(context.Background(), key, entry, ttl).Err()
				}
			}
			return nil
		}
	}
}
