package queries

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE account (
	id TEXT PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	name TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE sessions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES account(id),
	access_token TEXT NOT NULL,
	browser_info TEXT,
	expires TEXT NOT NULL,
	is_online INTEGER NOT NULL DEFAULT 1
);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.Exec(testSchema)
	require.NoError(t, err)
	return database
}

func TestCreateOrGetAccount(t *testing.T) {
	database := newTestDB(t)

	first, err := CreateOrGetAccount(database, "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Login)
	assert.NotEmpty(t, first.ID)

	// Second login returns the same account
	second, err := CreateOrGetAccount(database, "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	exists, err := CheckAccountExists(database, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	login, err := GetAccountLogin(database, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", login)
}

func TestSessionLifecycle(t *testing.T) {
	database := newTestDB(t)

	account, err := CreateOrGetAccount(database, "alice", "Alice")
	require.NoError(t, err)

	session, err := CreateSession(database, account.ID, "ghp_secret", "test-agent")
	require.NoError(t, err)

	exists, err := CheckSessionExists(database, session.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	token, err := GetSessionAccessToken(database, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", token)

	expires, err := GetSessionExpiration(database, account.ID, session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)

	newExpiry := time.Now().Add(48 * time.Hour)
	require.NoError(t, ExtendSessionExpiration(database, account.ID, session.ID, newExpiry))
	expires, err = GetSessionExpiration(database, account.ID, session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, newExpiry, expires, time.Second)
}

func TestInvalidateSession_ClearsToken(t *testing.T) {
	database := newTestDB(t)

	account, err := CreateOrGetAccount(database, "alice", "Alice")
	require.NoError(t, err)
	session, err := CreateSession(database, account.ID, "ghp_secret", "")
	require.NoError(t, err)

	require.NoError(t, InvalidateSession(database, session.ID))

	// An offline session no longer yields a token
	_, err = GetSessionAccessToken(database, session.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	var stored string
	require.NoError(t, database.QueryRow(
		"SELECT access_token FROM sessions WHERE id = ?", session.ID,
	).Scan(&stored))
	assert.Empty(t, stored, "the PAT must be wiped on logout")
}

func TestDeleteExpiredSessions(t *testing.T) {
	database := newTestDB(t)

	account, err := CreateOrGetAccount(database, "alice", "Alice")
	require.NoError(t, err)

	live, err := CreateSession(database, account.ID, "tok", "")
	require.NoError(t, err)

	stale, err := CreateSession(database, account.ID, "tok", "")
	require.NoError(t, err)
	require.NoError(t, ExtendSessionExpiration(database, account.ID, stale.ID, time.Now().Add(-time.Hour)))

	deleted, err := DeleteExpiredSessions(database)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	exists, err := CheckSessionExists(database, live.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = CheckSessionExists(database, stale.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
