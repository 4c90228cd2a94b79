package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/internal/templating/render"
	"github.com/bnema/skiff/pkg/bytesize"
	"github.com/bnema/skiff/pkg/sanitize"
	"github.com/bnema/skiff/pkg/store"
)

type fileRow struct {
	Name      string
	Path      string
	IsDir     bool
	HumanSize string
	ModTime   string
}

type crumb struct {
	Name string
	Path string
}

// BrowseFiles renders the uploads directory listing.
func BrowseFiles(c echo.Context, a *server.App) error {
	dir := c.QueryParam("dir")

	files, err := a.Uploads.List(dir)
	if err != nil {
		return sendError(c, err)
	}

	return renderBrowse(c, a, dir, "", files)
}

// SearchFiles renders search results over the whole uploads tree.
func SearchFiles(c echo.Context, a *server.App) error {
	query := c.QueryParam("q")
	ext := c.QueryParam("type")

	files, err := a.Uploads.Search(query, ext)
	if err != nil {
		return sendError(c, err)
	}

	return renderBrowse(c, a, "", query, files)
}

func renderBrowse(c echo.Context, a *server.App, dir, query string, files []store.FileInfo) error {
	rows := make([]fileRow, 0, len(files))
	for _, f := range files {
		rows = append(rows, fileRow{
			Name:      sanitize.Text(f.Name),
			Path:      url.QueryEscape(f.Path),
			IsDir:     f.IsDir,
			HumanSize: bytesize.Format(f.Size),
			ModTime:   f.ModTime.Format("2006-01-02 15:04"),
		})
	}

	rendererData, err := render.GetHTMLRenderer("browse", a.TemplateFS)
	if err != nil {
		return sendError(c, err)
	}

	renderedHTML, err := rendererData.Render(map[string]interface{}{
		"Files":       rows,
		"Dir":         url.QueryEscape(dir),
		"Query":       sanitize.Text(query),
		"Breadcrumbs": breadcrumbs(dir),
	})
	if err != nil {
		return sendError(c, err)
	}

	return c.HTML(http.StatusOK, renderedHTML)
}

// breadcrumbs builds the crumb trail for a relative directory.
func breadcrumbs(dir string) []crumb {
	dir = path.Clean("/" + filepath.ToSlash(dir))
	if dir == "/" {
		return nil
	}
	var crumbs []crumb
	var acc string
	for _, part := range strings.Split(strings.TrimPrefix(dir, "/"), "/") {
		acc = path.Join(acc, part)
		crumbs = append(crumbs, crumb{Name: sanitize.Text(part), Path: url.QueryEscape(acc)})
	}
	return crumbs
}

// DownloadFile streams one uploaded file, with the same
// inline/attachment switch the share proxy uses.
func DownloadFile(c echo.Context, a *server.App) error {
	relPath := c.QueryParam("path")
	if relPath == "" {
		return sendJSONError(c, http.StatusBadRequest, "missing path")
	}

	f, fi, err := a.Uploads.Open(relPath)
	if err != nil {
		return c.String(http.StatusNotFound, "file not found")
	}
	defer f.Close()

	filename := filepath.Base(fi.Name())
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "inline"
	if c.QueryParam("download") == "true" {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename="%s"`, disposition, strings.ReplaceAll(filename, `"`, "")))

	return c.Stream(http.StatusOK, contentType, f)
}

// DeleteFile removes one uploaded file.
func DeleteFile(c echo.Context, a *server.App) error {
	relPath := c.QueryParam("path")
	if relPath == "" {
		return sendJSONError(c, http.StatusBadRequest, "missing path")
	}
	if err := a.Uploads.Remove(relPath); err != nil {
		return sendJSONError(c, http.StatusNotFound, "could not delete file")
	}
	return c.JSON(http.StatusOK, map[string]string{"deleted": relPath})
}

// ListFiles is the JSON variant of the directory listing, used by the CLI.
func ListFiles(c echo.Context, a *server.App) error {
	files, err := a.Uploads.List(c.QueryParam("dir"))
	if err != nil {
		return sendJSONError(c, http.StatusNotFound, "could not list directory")
	}
	return c.JSON(http.StatusOK, files)
}
