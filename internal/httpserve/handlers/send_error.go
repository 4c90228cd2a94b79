package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/pkg/logger"
	"github.com/bnema/skiff/pkg/sanitize"
)

// sendError renders a sanitized HTML error. The original error is logged,
// never echoed verbatim into the page.
func sendError(c echo.Context, err error) error {
	logger.Error("Request failed", "path", c.Path(), "error", err)
	rawErrHTML := `<div>Error: ` + err.Error() + `</div>`
	return c.HTML(http.StatusInternalServerError, sanitize.HTML(rawErrHTML))
}

// sendJSONError returns a structured error body for API endpoints.
func sendJSONError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
