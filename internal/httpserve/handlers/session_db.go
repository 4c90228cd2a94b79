package handlers

import (
	"fmt"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/bnema/skiff/internal/db/queries"
	"github.com/bnema/skiff/internal/server"
	"github.com/bnema/skiff/pkg/logger"
)

// getSession gets the session from the context
func getSession(c echo.Context) (*sessions.Session, error) {
	sess, err := session.Get("session", c)
	if err != nil {
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	return sess, nil
}

// ValidateSessionAndUser checks the cookie against the sessions table and
// extends a valid session.
func ValidateSessionAndUser(c echo.Context, a *server.App) error {
	sess, err := getSession(c)
	if err != nil {
		logger.Warn("Failed to get session from cookie store", "error", err)
		return err
	}

	accountID, ok := sess.Values["accountID"].(string)
	if !ok || accountID == "" {
		return fmt.Errorf("accountID not found or invalid")
	}

	sessionID, ok := sess.Values["sessionID"].(string)
	if !ok || sessionID == "" {
		return fmt.Errorf("sessionID not found or invalid")
	}

	authenticated, ok := sess.Values["authenticated"].(bool)
	if !ok || !authenticated {
		return fmt.Errorf("user not authenticated")
	}

	accountExists, err := queries.CheckAccountExists(a.DB, accountID)
	if err != nil {
		return fmt.Errorf("failed checking account existence: %w", err)
	}
	if !accountExists {
		return fmt.Errorf("account does not exist")
	}

	currentTime := time.Now()
	sessionExpiration, err := queries.GetSessionExpiration(a.DB, accountID, sessionID)
	if err != nil {
		return fmt.Errorf("could not get session expiration: %w", err)
	}
	if currentTime.After(sessionExpiration) {
		return fmt.Errorf("session expired")
	}

	newExpirationTime := currentTime.Add(24 * time.Hour)
	if err := queries.ExtendSessionExpiration(a.DB, accountID, sessionID, newExpirationTime); err != nil {
		return fmt.Errorf("could not extend session expiration: %w", err)
	}

	return nil
}

// sessionAccessToken returns the PAT and login of the current session.
// The token is only ever used server-side for GitHub API calls.
func sessionAccessToken(c echo.Context, a *server.App) (string, string, error) {
	sess, err := getSession(c)
	if err != nil {
		return "", "", err
	}

	sessionID, ok := sess.Values["sessionID"].(string)
	if !ok || sessionID == "" {
		return "", "", fmt.Errorf("sessionID not found or invalid")
	}
	accountID, ok := sess.Values["accountID"].(string)
	if !ok || accountID == "" {
		return "", "", fmt.Errorf("accountID not found or invalid")
	}

	token, err := queries.GetSessionAccessToken(a.DB, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("could not get session token: %w", err)
	}
	login, err := queries.GetAccountLogin(a.DB, accountID)
	if err != nil {
		return "", "", fmt.Errorf("could not get account login: %w", err)
	}

	return token, login, nil
}
