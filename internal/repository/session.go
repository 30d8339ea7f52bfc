package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SessionRecord represents a persisted chat session
type SessionRecord struct {
	ID        int64     `json:"id"`
	ChatJID   string    `json:"chat_jid"`
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRepository handles database operations for chat sessions
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(dbPath string) (*SessionRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_jid TEXT NOT NULL UNIQUE,
			token TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
		CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionRepository{db: db, now: time.Now}, nil
}

// Close closes database connection
func (r *SessionRepository) Close() error {
	return r.db.Close()
}

// Save stores a session, replacing any previous one for the same chat
func (r *SessionRepository) Save(record *SessionRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (chat_jid, token, user_id, user_name, role, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_jid) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			role = excluded.role,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, record.ChatJID, record.Token, record.UserID, record.UserName, record.Role, record.CreatedAt, record.ExpiresAt)
	return err
}

// GetByChat gets the session of a chat (only non-expired)
func (r *SessionRepository) GetByChat(chatJID string) (*SessionRecord, error) {
	var record SessionRecord
	err := r.db.QueryRow(`
		SELECT id, chat_jid, token, user_id, user_name, role, created_at, expires_at
		FROM sessions
		WHERE chat_jid = ? AND expires_at > ?
		LIMIT 1
	`, chatJID, r.now()).Scan(
		&record.ID,
		&record.ChatJID,
		&record.Token,
		&record.UserID,
		&record.UserName,
		&record.Role,
		&record.CreatedAt,
		&record.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes the session of a chat
func (r *SessionRepository) Delete(chatJID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE chat_jid = ?`, chatJID)
	return err
}

// DeleteToken removes a chat session only if it still holds token
func (r *SessionRepository) DeleteToken(chatJID, token string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE chat_jid = ? AND token = ?`, chatJID, token)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateIdentity refreshes the cached user fields of a chat session
func (r *SessionRepository) UpdateIdentity(chatJID, userName, role string) error {
	_, err := r.db.Exec(`
		UPDATE sessions SET user_name = ?, role = ? WHERE chat_jid = ?
	`, userName, role, chatJID)
	return err
}

// CleanupExpired removes expired session records
func (r *SessionRepository) CleanupExpired() (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM sessions WHERE expires_at <= ?
	`, r.now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns total active (non-expired) sessions
func (r *SessionRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM sessions WHERE expires_at > ?
	`, r.now()).Scan(&count)
	return count, err
}
