package handlers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/pkg/logger"
)

// UploadFile handles POST /files/upload (multipart form).
func UploadFile(c echo.Context, a *server.App) error {
	// Enforce the upload size limit before reading the form
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, a.MaxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		return sendError(c, err)
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.String(http.StatusBadRequest, "No file uploaded")
	}

	dir := c.QueryParam("dir")

	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return sendError(c, err)
		}

		savedPath, err := a.Uploads.Save(dir, file.Filename, src)
		src.Close()
		if err != nil {
			return sendError(c, err)
		}

		logger.Info("File uploaded", "path", savedPath, "size", file.Size)
	}

	return c.Redirect(http.StatusSeeOther, "/files/browse?dir="+url.QueryEscape(dir))
}
