package middleware

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/pkg/kv"
	"github.com/bnema/skiff/pkg/logger"
)

// NewRateLimiter builds the rate limiter for credential-bearing endpoints
// (login, share creation). With a storage dir configured the limiter state
// lives in Starskey and survives restarts; otherwise it falls back to an
// in-memory store.
func NewRateLimiter(a *server.App) echo.MiddlewareFunc {
	var store middleware.RateLimiterStore

	cfg := a.Config.Share
	if a.Config.General.StorageDir != "" {
		dbPath := filepath.Join(a.Config.General.StorageDir, "ratelimit")
		starskeyStore, err := kv.NewStarskeyRateLimiterStore(dbPath, cfg.RateLimit, cfg.RateBurst, time.Minute)
		if err != nil {
			logger.Warn("Could not open Starskey rate limiter store, falling back to memory", "error", err)
		} else {
			store = starskeyStore
		}
	}
	if store == nil {
		store = kv.NewMemoryRateLimiterStore(cfg.RateLimit, cfg.RateBurst)
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "could not identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	})
}
