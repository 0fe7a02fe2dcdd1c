package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/shared"
)

// SQLiteStore backs the Store interface with a SQLite database so credentials
// survive restarts. Swappable for MemoryStore without touching adapters.
type SQLiteStore struct {
	db *sql.DB
}

const credentialSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	session_id    TEXT NOT NULL,
	platform      TEXT NOT NULL,
	access_token  TEXT NOT NULL,
	refresh_token TEXT,
	token_secret  TEXT,
	expires_at    TIMESTAMP,
	account_id    TEXT,
	display_name  TEXT,
	connected_at  TIMESTAMP,
	PRIMARY KEY (session_id, platform)
)`

// NewSQLiteStore opens (or creates) the credential database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(credentialSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get retrieves the credential for a session/platform pair.
func (s *SQLiteStore) Get(sessionID, platform string) (*models.Credential, error) {
	query := `
		SELECT access_token, refresh_token, token_secret, expires_at, account_id, display_name, connected_at
		FROM credentials
		WHERE session_id = ? AND platform = ?
	`

	var (
		cred         models.Credential
		refreshToken sql.NullString
		tokenSecret  sql.NullString
		expiresAt    sql.NullTime
		connectedAt  sql.NullTime
	)

	err := s.db.QueryRow(query, sessionID, platform).Scan(
		&cred.AccessToken, &refreshToken, &tokenSecret, &expiresAt,
		&cred.AccountID, &cred.DisplayName, &connectedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	cred.RefreshToken = refreshToken.String
	cred.TokenSecret = tokenSecret.String
	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}
	if connectedAt.Valid {
		cred.ConnectedAt = connectedAt.Time
	}

	return &cred, nil
}

// Set commits a credential for a session/platform pair, replacing any existing row.
func (s *SQLiteStore) Set(sessionID, platform string, cred *models.Credential) error {
	query := `
		INSERT INTO credentials (session_id, platform, access_token, refresh_token, token_secret, expires_at, account_id, display_name, connected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_secret = excluded.token_secret,
			expires_at = excluded.expires_at,
			account_id = excluded.account_id,
			display_name = excluded.display_name,
			connected_at = excluded.connected_at
	`

	var expiresAt any
	if !cred.ExpiresAt.IsZero() {
		expiresAt = cred.ExpiresAt
	}
	connectedAt := cred.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now()
	}

	_, err := s.db.Exec(query, sessionID, platform,
		cred.AccessToken, cred.RefreshToken, cred.TokenSecret, expiresAt,
		cred.AccountID, cred.DisplayName, connectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

// Clear removes the credential for a session/platform pair.
func (s *SQLiteStore) Clear(sessionID, platform string) error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE session_id = ? AND platform = ?`, sessionID, platform)
	if err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
