package queries

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/skiff/internal/db"
)

const sessionDuration = 24 * time.Hour

// CreateSession stores a new session bound to an account and its PAT.
func CreateSession(database *sql.DB, accountID, accessToken, browserInfo string) (*db.Session, error) {
	session := &db.Session{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		AccessToken: accessToken,
		BrowserInfo: browserInfo,
		Expires:     time.Now().Add(sessionDuration).UTC().Format(time.RFC3339),
		IsOnline:    true,
	}
	_, err := database.Exec(
		"INSERT INTO sessions (id, account_id, access_token, browser_info, expires, is_online) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.AccountID, session.AccessToken, session.BrowserInfo, session.Expires, session.IsOnline,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}
	return session, nil
}

// CheckSessionExists reports whether the session ID is present.
func CheckSessionExists(database *sql.DB, sessionID string) (bool, error) {
	var count int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM sessions WHERE id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSessionExpiration returns the expiry time of an online session.
func GetSessionExpiration(database *sql.DB, accountID, sessionID string) (time.Time, error) {
	var expires string
	err := database.QueryRow(
		"SELECT expires FROM sessions WHERE id = ? AND account_id = ? AND is_online = 1",
		sessionID, accountID,
	).Scan(&expires)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, expires)
}

// ExtendSessionExpiration pushes the session expiry forward.
func ExtendSessionExpiration(database *sql.DB, accountID, sessionID string, newExpiration time.Time) error {
	_, err := database.Exec(
		"UPDATE sessions SET expires = ? WHERE id = ? AND account_id = ?",
		newExpiration.UTC().Format(time.RFC3339), sessionID, accountID,
	)
	return err
}

// GetSessionAccessToken returns the PAT stored for an online session.
// The caller uses it server-side only.
func GetSessionAccessToken(database *sql.DB, sessionID string) (string, error) {
	var token string
	err := database.QueryRow(
		"SELECT access_token FROM sessions WHERE id = ? AND is_online = 1", sessionID,
	).Scan(&token)
	if err != nil {
		return "", err
	}
	return token, nil
}

// InvalidateSession marks a session offline and clears its PAT.
func InvalidateSession(database *sql.DB, sessionID string) error {
	_, err := database.Exec(
		"UPDATE sessions SET is_online = 0, access_token = '' WHERE id = ?", sessionID,
	)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry.
func DeleteExpiredSessions(database *sql.DB) (int64, error) {
	res, err := database.Exec(
		"DELETE FROM sessions WHERE expires < ?", time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
