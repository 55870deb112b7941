package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CacheStore holds cached response bodies keyed by request.
type CacheStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryCacheStore is a TTL map suitable for a single server process.
type InMemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewInMemoryCacheStore() *InMemoryCacheStore {
	return &InMemoryCacheStore{entries: make(map[string]cacheEntry)}
}

func (s *InMemoryCacheStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (s *InMemoryCacheStore) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// StartCleanup evicts expired entries on an interval until ctx is cancelled.
func (s *InMemoryCacheStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				s.mu.Lock()
				for k, e := range s.entries {
					if now.After(e.expiresAt) {
						delete(s.entries, k)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// ResponseCache returns middleware that serves successful GET responses from
// the store for the given TTL. Only the listed paths are cached; it is meant
// for aggregate endpoints like the dashboard stats, where a few seconds of
// staleness is acceptable and the underlying query scans every report.
func ResponseCache(store CacheStore, ttl time.Duration, paths ...string) echo.MiddlewareFunc {
	cacheable := make(map[string]bool, len(paths))
	for _, p := range paths {
		cacheable[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet || !cacheable[c.Request().URL.Path] {
				return next(c)
			}

			key := c.Request().URL.RequestURI()
			if body, ok := store.Get(key); ok {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			// Capture the response body while streaming it to the client.
			var buf bytes.Buffer
			resp := c.Response()
			orig := resp.Writer
			resp.Writer = &teeResponseWriter{ResponseWriter: orig, buf: &buf}
			defer func() { resp.Writer = orig }()

			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}

			if resp.Status == http.StatusOK {
				store.Set(key, buf.Bytes(), ttl)
			}
			return nil
		}
	}
}

type teeResponseWriter struct {
	http.ResponseWriter
	buf *bytes.Buffer
}

func (w *teeResponseWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
