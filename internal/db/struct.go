package db

// Account is one GitHub identity that has logged into skiff.
type Account struct {
	ID        string `sql:"id, primary_key"`
	Login     string `sql:"login"`
	Name      string `sql:"name"`
	CreatedAt string `sql:"created_at"`
}

// Session is one browser session. AccessToken holds the GitHub personal
// access token presented at login; it never leaves the server.
type Session struct {
	ID          string `sql:"id, primary_key"`
	AccountID   string `sql:"account_id, foreign_key=account.id"`
	AccessToken string `sql:"access_token"`
	BrowserInfo string `sql:"browser_info"`
	Expires     string `sql:"expires"`
	IsOnline    bool   `sql:"is_online"`
}
