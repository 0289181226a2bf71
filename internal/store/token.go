package store

const tokenKey = "gitlab_token"

// SaveToken persists the GitLab access token across sessions.
func (db *DB) SaveToken(token string) error {
	return db.SetState(tokenKey, token)
}

// Token returns the stored access token, or "" when none was saved.
func (db *DB) Token() (string, error) {
	return db.GetState(tokenKey)
}

// ClearToken removes the stored access token.
func (db *DB) ClearToken() error {
	return db.DeleteState(tokenKey)
}
