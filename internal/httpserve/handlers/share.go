package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/internal/share"
	"github.com/bnema/skiff/internal/templating/render"
	"github.com/bnema/skiff/pkg/logger"
	"github.com/bnema/skiff/pkg/sanitize"
)

// CreateShare handles POST /share/create. The issuer authenticates with a
// bearer PAT; the response carries the anonymous share URL.
func CreateShare(c echo.Context, a *server.App) error {
	credential := bearerToken(c)
	if credential == "" {
		// Browser clients fall back to the PAT stored in their session
		if token, _, err := sessionAccessToken(c, a); err == nil {
			credential = token
		}
	}

	var req share.CreateRequest
	if err := c.Bind(&req); err != nil {
		return sendJSONError(c, http.StatusBadRequest, "malformed request body")
	}

	resp, err := a.Shares.Create(c.Request().Context(), credential, req)
	if err != nil {
		switch {
		case errors.Is(err, share.ErrInvalidRequest):
			return sendJSONError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, share.ErrUnauthorized):
			return sendJSONError(c, http.StatusUnauthorized, "credential rejected")
		default:
			logger.Error("Share creation failed", "error", err)
			return sendJSONError(c, http.StatusInternalServerError, "could not create share link")
		}
	}

	return c.JSON(http.StatusCreated, resp)
}

// ShareLanding handles GET /share/:username/:token, the human-readable
// page behind a share link.
func ShareLanding(c echo.Context, a *server.App) error {
	username := c.Param("username")
	token := c.Param("token")

	record, err := a.Shares.Resolve(username, token)
	if err != nil {
		return shareErrorResponse(c, err)
	}

	rendererData, err := render.GetHTMLRenderer("share", a.TemplateFS)
	if err != nil {
		return sendError(c, err)
	}

	data := map[string]interface{}{
		"FileName":   sanitize.Text(path.Base(record.FilePath)),
		"FilePath":   sanitize.Text(record.FilePath),
		"Owner":      sanitize.Text(record.Owner),
		"Repo":       sanitize.Text(record.Repo),
		"Branch":     sanitize.Text(record.Branch),
		"Username":   sanitize.Text(username),
		"ExpiresAt":  record.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
		"ContentURL": fmt.Sprintf("/share/%s/%s/download", username, token),
	}

	renderedHTML, err := rendererData.Render(data)
	if err != nil {
		return sendError(c, err)
	}

	return c.HTML(http.StatusOK, renderedHTML)
}

// ShareDownload handles GET /share/:username/:token/download, the byte
// proxy behind a share link. The stored credential is used server-side
// only; fetch failures surface as a generic 500.
func ShareDownload(c echo.Context, a *server.App) error {
	username := c.Param("username")
	token := c.Param("token")

	record, err := a.Shares.Resolve(username, token)
	if err != nil {
		return shareErrorResponse(c, err)
	}

	data, err := a.Github.GetFileContent(
		c.Request().Context(),
		record.Credential,
		record.Owner,
		record.Repo,
		record.Branch,
		record.FilePath,
	)
	if err != nil {
		logger.Error("Share proxy fetch failed",
			"username", username,
			"owner", record.Owner,
			"repo", record.Repo,
			"path", record.FilePath,
			"error", err)
		return c.String(http.StatusInternalServerError, "failed to fetch the shared file")
	}

	filename := path.Base(record.FilePath)
	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "inline"
	if c.QueryParam("download") == "true" {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename="%s"`, disposition, strings.ReplaceAll(filename, `"`, "")))

	return c.Blob(http.StatusOK, contentType, data)
}

func shareErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, share.ErrGone):
		return c.String(http.StatusGone, "This share link has expired")
	case errors.Is(err, share.ErrNotFound):
		return c.String(http.StatusNotFound, "This share link does not exist")
	default:
		return c.String(http.StatusInternalServerError, "could not resolve share link")
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	for _, prefix := range []string{"Bearer ", "token "} {
		if strings.HasPrefix(auth, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
		}
	}
	return ""
}
