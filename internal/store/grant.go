package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanhale/solstice/internal/model"
)

type GrantStore struct {
	db *sql.DB
}

func NewGrantStore(db *sql.DB) *GrantStore {
	return &GrantStore{db: db}
}

func scanGrant(scanner interface{ Scan(...any) error }) (*model.AccessGrant, error) {
	var g model.AccessGrant
	var email sql.NullString
	var expiresAt sql.NullTime

	err := scanner.Scan(&g.ID, &g.Token, &g.Kind, &email, &expiresAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		g.Email = &email.String
	}
	if expiresAt.Valid {
		g.ExpiresAt = &expiresAt.Time
	}
	return &g, nil
}

const grantCols = `id, token, kind, email, expires_at, created_at`

// CreateDurable records a one-year site-access grant for a verified email.
func (s *GrantStore) CreateDurable(email string) (*model.AccessGrant, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(365 * 24 * time.Hour)

	result, err := s.db.Exec(
		`INSERT INTO access_grants (token, kind, email, expires_at) VALUES (?, ?, ?, ?)`,
		token, model.GrantDurable, email, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert durable grant: %w", err)
	}
	return s.getByID(result)
}

// CreateEphemeral records a grant for a visitor who skipped email capture.
// The row has no expiry; its reach is bounded by the browser-session cookie
// that carries the token.
func (s *GrantStore) CreateEphemeral() (*model.AccessGrant, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO access_grants (token, kind) VALUES (?, ?)`,
		token, model.GrantEphemeral,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ephemeral grant: %w", err)
	}
	return s.getByID(result)
}

func (s *GrantStore) getByID(result sql.Result) (*model.AccessGrant, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+grantCols+` FROM access_grants WHERE id = ?`, id)
	return scanGrant(row)
}

// GetByToken returns the grant for the given token, or nil if it does not
// exist or a durable grant has expired.
func (s *GrantStore) GetByToken(token string) (*model.AccessGrant, error) {
	row := s.db.QueryRow(
		`SELECT `+grantCols+` FROM access_grants
		 WHERE token = ? AND (expires_at IS NULL OR expires_at > datetime('now'))`,
		token,
	)
	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grant by token: %w", err)
	}
	return g, nil
}

// DeleteStale removes expired durable grants and ephemeral grants older than
// 30 days (the backing cookie is long gone by then).
func (s *GrantStore) DeleteStale() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM access_grants
		 WHERE (expires_at IS NOT NULL AND expires_at <= datetime('now'))
		    OR (kind = ? AND created_at <= datetime('now', '-30 days'))`,
		model.GrantEphemeral,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale grants: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
