package httpserve

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bnema/skiff/internal/httpserve/handlers"
	"github.com/bnema/skiff/internal/httpserve/middleware"
	"github.com/bnema/skiff/internal/server"
)

// RegisterRoutes wires all HTTP routes onto the echo instance.
func RegisterRoutes(e *echo.Echo, a *server.App) *echo.Echo {
	e.Use(echomw.Recover())
	e.Use(middleware.SecureRoutes(a))
	e.Use(middleware.InitSessionMiddleware(a))

	limiter := middleware.NewRateLimiter(a)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/files/browse")
	})

	e.GET("/login", wrap(a, handlers.RenderLoginPage))
	e.POST("/login", wrap(a, handlers.HandleLogin), limiter)
	e.GET("/logout", wrap(a, handlers.HandleLogout))

	files := e.Group("/files", middleware.RequireLogin)
	files.GET("", wrap(a, handlers.ListFiles))
	files.GET("/browse", wrap(a, handlers.BrowseFiles))
	files.GET("/search", wrap(a, handlers.SearchFiles))
	files.GET("/download", wrap(a, handlers.DownloadFile))
	files.GET("/list", wrap(a, handlers.ListFiles))
	files.POST("/upload", wrap(a, handlers.UploadFile))
	files.DELETE("", wrap(a, handlers.DeleteFile))

	repo := e.Group("/repo", middleware.RequireLogin)
	repo.GET("", wrap(a, handlers.ListRepos))
	repo.GET("/contents", wrap(a, handlers.RepoContents))
	repo.GET("/file", wrap(a, handlers.RepoFile))

	// Share issuance authenticates with a bearer PAT (or a session for
	// browser clients); the landing page and proxy are anonymous.
	e.POST("/share/create", wrap(a, handlers.CreateShare), limiter)
	e.GET("/share/:username/:token", wrap(a, handlers.ShareLanding))
	e.GET("/share/:username/:token/download", wrap(a, handlers.ShareDownload))

	return e
}

func wrap(a *server.App, h func(echo.Context, *server.App) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c, a)
	}
}
