package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/server"
)

// ListRepos lists the repositories visible to the session's PAT.
func ListRepos(c echo.Context, a *server.App) error {
	token, _, err := sessionAccessToken(c, a)
	if err != nil {
		return sendJSONError(c, http.StatusUnauthorized, "not logged in")
	}

	repos, err := a.Github.ListRepos(c.Request().Context(), token)
	if err != nil {
		return sendJSONError(c, http.StatusBadGateway, "could not list repositories")
	}
	return c.JSON(http.StatusOK, repos)
}

// RepoContents lists one directory of a repository.
func RepoContents(c echo.Context, a *server.App) error {
	token, _, err := sessionAccessToken(c, a)
	if err != nil {
		return sendJSONError(c, http.StatusUnauthorized, "not logged in")
	}

	owner := c.QueryParam("owner")
	repo := c.QueryParam("repo")
	if owner == "" || repo == "" {
		return sendJSONError(c, http.StatusBadRequest, "missing owner or repo")
	}

	entries, err := a.Github.ListContents(
		c.Request().Context(), token,
		owner, repo, c.QueryParam("branch"), c.QueryParam("path"),
	)
	if err != nil {
		return sendJSONError(c, http.StatusBadGateway, "could not list repository contents")
	}
	return c.JSON(http.StatusOK, entries)
}

// RepoFile streams one repository file to the authenticated user. This is
// the direct-view path; the share proxy must return identical bytes.
func RepoFile(c echo.Context, a *server.App) error {
	token, _, err := sessionAccessToken(c, a)
	if err != nil {
		return sendJSONError(c, http.StatusUnauthorized, "not logged in")
	}

	owner := c.QueryParam("owner")
	repo := c.QueryParam("repo")
	filePath := c.QueryParam("path")
	if owner == "" || repo == "" || filePath == "" {
		return sendJSONError(c, http.StatusBadRequest, "missing owner, repo or path")
	}

	data, err := a.Github.GetFileContent(
		c.Request().Context(), token,
		owner, repo, c.QueryParam("branch"), filePath,
	)
	if err != nil {
		return sendJSONError(c, http.StatusBadGateway, "could not fetch file")
	}

	filename := path.Base(filePath)
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
