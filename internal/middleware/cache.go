package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/devanchor/studio-booking/internal/config"
)

// cacheWriter tees the response body so successful payloads can be stored
// after the handler runs.
type cacheWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *cacheWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= w.limit {
		w.buf.Write(b)
	} else {
		w.buf.Reset()
		w.limit = 0 // oversized: stop buffering for this response
	}
	return w.ResponseWriter.Write(b)
}

// CacheGET serves repeated GET requests from Redis. Only 200 JSON responses
// up to MaxBodyBytes are stored; entries expire after the configured TTL.
// Without a Redis client the middleware passes through.
func CacheGET(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			r := c.Request()
			sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
			key := fmt.Sprintf("%s:%x", cfg.Prefix, sum)

			if body, err := rdb.Get(r.Context(), key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, body)
			}

			w := &cacheWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = w
			if err := next(c); err != nil {
				return err
			}
			if w.status == http.StatusOK && w.buf.Len() > 0 {
				_ = rdb.Set(r.Context(), key, w.buf.Bytes(), cfg.TTL).Err()
			}
			return nil
		}
	}
}
