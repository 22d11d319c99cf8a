package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanhale/solstice/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	err := scanner.Scan(&s.ID, &s.Token, &s.Email, &s.IsAdmin, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sessionCols = `id, token, email, is_admin, expires_at, created_at`

// Create generates a new session with a crypto-random token and 7-day expiry.
// The admin flag is a snapshot taken by the caller at creation time; it is
// stored verbatim and never re-derived for the life of the session.
func (s *SessionStore) Create(email string, isAdmin bool) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(7 * 24 * time.Hour)

	result, err := s.db.Exec(
		`INSERT INTO sessions (token, email, is_admin, expires_at) VALUES (?, ?, ?, ?)`,
		token, email, isAdmin, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetByToken returns the session for the given token, or nil if expired or
// not found. A missing session is the normal anonymous state, not an error.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM sessions WHERE token = ? AND expires_at > datetime('now')`,
		token,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByEmail revokes every session for the email. Verification runs this
// before creating a fresh session so a changed admin address can never leave
// a stale privileged session behind.
func (s *SessionStore) DeleteByEmail(email string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("delete sessions by email: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
