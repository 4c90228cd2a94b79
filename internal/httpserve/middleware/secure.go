package middleware

import (
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/pkg/logger"
)

func SecureRoutes(a *server.App) echo.MiddlewareFunc {
	// Share previews render user content inline, keep the CSP tight
	csp := "default-src 'self'; style-src 'self' 'unsafe-inline'; font-src 'self' data:; img-src 'self' data:; frame-ancestors 'self'"

	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            3600,
		HSTSExcludeSubdomains: false,
		ContentSecurityPolicy: csp,
	})
}

// InitSessionMiddleware initializes the session middleware with secure options
func InitSessionMiddleware(a *server.App) echo.MiddlewareFunc {
	isHttps := a.Config.Http.Https
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		logger.Fatal("Environment variable SESSION_SECRET is not set or cannot be read")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   isHttps,
		MaxAge:   86400,
		SameSite: http.SameSiteLaxMode,
	}
	return session.Middleware(store)
}
