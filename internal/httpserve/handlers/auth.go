package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/db/queries"
	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/internal/templating/render"
	"github.com/bnema/skiff/pkg/logger"
)

// RenderLoginPage renders the login.gohtml template
func RenderLoginPage(c echo.Context, a *server.App) error {
	errorMsg := ""
	switch c.QueryParam("error") {
	case "empty_token":
		errorMsg = "Please provide a personal access token."
	case "invalid_token":
		errorMsg = "GitHub rejected that token."
	case "server_error":
		errorMsg = "Something went wrong, try again."
	}

	rendererData, err := render.GetHTMLRenderer("login", a.TemplateFS)
	if err != nil {
		return sendError(c, err)
	}

	renderedHTML, err := rendererData.Render(map[string]interface{}{
		"Title": "Login",
		"Error": errorMsg,
	})
	if err != nil {
		return sendError(c, err)
	}

	return c.HTML(http.StatusOK, renderedHTML)
}

// HandleLogin validates the submitted PAT against the GitHub API and opens
// a session. The PAT itself is stored server-side in the sessions table,
// never in the cookie.
func HandleLogin(c echo.Context, a *server.App) error {
	formToken := c.FormValue("token")
	if formToken == "" {
		return c.Redirect(http.StatusSeeOther, "/login?error=empty_token")
	}

	user, err := a.Github.GetUser(c.Request().Context(), formToken)
	if err != nil {
		logger.Warn("Login rejected", "error", err)
		return c.Redirect(http.StatusSeeOther, "/login?error=invalid_token")
	}

	account, err := queries.CreateOrGetAccount(a.DB, user.Login, user.Name)
	if err != nil {
		logger.Error("Failed to create account", "error", err)
		return c.Redirect(http.StatusSeeOther, "/login?error=server_error")
	}

	browserInfo := c.Request().UserAgent()
	dbSession, err := queries.CreateSession(a.DB, account.ID, formToken, browserInfo)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		return c.Redirect(http.StatusSeeOther, "/login?error=server_error")
	}

	sess, err := getSession(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login?error=server_error")
	}
	sess.Values["sessionID"] = dbSession.ID
	sess.Values["accountID"] = account.ID
	sess.Values["authenticated"] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logger.Error("Failed to save session cookie", "error", err)
		return c.Redirect(http.StatusSeeOther, "/login?error=server_error")
	}

	logger.Info("User logged in", "login", user.Login)
	return c.Redirect(http.StatusFound, "/files/browse")
}

// HandleLogout invalidates the session in the DB and clears the cookie.
func HandleLogout(c echo.Context, a *server.App) error {
	sess, err := getSession(c)
	if err == nil {
		if sessionID, ok := sess.Values["sessionID"].(string); ok && sessionID != "" {
			if err := queries.InvalidateSession(a.DB, sessionID); err != nil {
				logger.Warn("Failed to invalidate session", "error", err)
			}
		}
		sess.Values = map[interface{}]interface{}{}
		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request(), c.Response())
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}
