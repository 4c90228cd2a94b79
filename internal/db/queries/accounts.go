package queries

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/skiff/internal/db"
)

// CreateOrGetAccount returns the account for a GitHub login, creating it
// on first login.
func CreateOrGetAccount(database *sql.DB, login, name string) (*db.Account, error) {
	account, err := GetAccountByLogin(database, login)
	if err == nil {
		return account, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("could not look up account: %w", err)
	}

	account = &db.Account{
		ID:        uuid.New().String(),
		Login:     login,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err = database.Exec(
		"INSERT INTO account (id, login, name, created_at) VALUES (?, ?, ?, ?)",
		account.ID, account.Login, account.Name, account.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create account: %w", err)
	}
	return account, nil
}

// GetAccountByLogin fetches an account by its GitHub login.
func GetAccountByLogin(database *sql.DB, login string) (*db.Account, error) {
	var account db.Account
	err := database.QueryRow(
		"SELECT id, login, name, created_at FROM account WHERE login = ?", login,
	).Scan(&account.ID, &account.Login, &account.Name, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CheckAccountExists reports whether an account ID is present.
func CheckAccountExists(database *sql.DB, accountID string) (bool, error) {
	var count int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM account WHERE id = ?", accountID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAccountLogin returns the GitHub login behind an account ID.
func GetAccountLogin(database *sql.DB, accountID string) (string, error) {
	var login string
	err := database.QueryRow(
		"SELECT login FROM account WHERE id = ?", accountID,
	).Scan(&login)
	if err != nil {
		return "", err
	}
	return login, nil
}
