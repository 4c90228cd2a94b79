package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/bnema/skiff/pkg/logger"
)

const (
	DBFilename = "sqlite.db"
)

const schema = `
CREATE TABLE IF NOT EXISTS account (
	id TEXT PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	name TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES account(id),
	access_token TEXT NOT NULL,
	browser_info TEXT,
	expires TEXT NOT NULL,
	is_online INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id);
`

func (a *App) getDiskDBFilePath() string {
	diskDBFilepath := filepath.Join(a.DBDir, a.DBFilename)
	logger.Debug("DB file path", "path", diskDBFilepath)
	return diskDBFilepath
}

// ensureDBDir ensures that the database directory exists.
func (a *App) ensureDBDir() error {
	if _, err := os.Stat(a.DBDir); os.IsNotExist(err) {
		logger.Debug("Creating database directory", "dir", a.DBDir)
		if err := os.MkdirAll(a.DBDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// InitializeDB opens the sqlite database and creates missing tables.
func InitializeDB(a *App) (*sql.DB, error) {
	logger.Debug("Initializing database")
	if err := a.ensureDBDir(); err != nil {
		return nil, fmt.Errorf("failed to ensure DB directory: %w", err)
	}

	dbPath := a.getDiskDBFilePath()
	a.DBPath = dbPath

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	a.DB = database
	logger.Info("Database initialized", "path", dbPath)
	return database, nil
}

// CloseDB closes the database connection.
func CloseDB(a *App) error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.DB = nil
	return nil
}
