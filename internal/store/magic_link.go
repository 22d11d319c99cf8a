package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rowanhale/solstice/internal/model"
)

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var ml model.MagicLink
	var usedAt sql.NullTime

	err := scanner.Scan(&ml.ID, &ml.Token, &ml.Email, &ml.ExpiresAt, &usedAt, &ml.CreatedAt)
	if err != nil {
		return nil, err
	}

	if usedAt.Valid {
		ml.UsedAt = &usedAt.Time
	}
	return &ml, nil
}

const magicLinkCols = `id, token, email, expires_at, used_at, created_at`

// Create issues a new single-use link token for the email with a 15-minute
// expiry. Earlier tokens for the same email stay valid; each link a visitor
// requested works independently until used or expired.
func (s *MagicLinkStore) Create(email string) (*model.MagicLink, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(15 * time.Minute)

	result, err := s.db.Exec(
		`INSERT INTO magic_link_tokens (token, email, expires_at) VALUES (?, ?, ?)`,
		token, email, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert magic link: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_link_tokens WHERE id = ?`, id)
	return scanMagicLink(row)
}

// Consume marks the token used and returns it, but only if it is still
// unused and unexpired. Returns nil for a token that is wrong, expired, or
// already used — callers must not distinguish those cases.
//
// The mark-used is a single conditional UPDATE, so when two requests race on
// the same token exactly one sees a row change and wins.
func (s *MagicLinkStore) Consume(token string) (*model.MagicLink, error) {
	result, err := s.db.Exec(
		`UPDATE magic_link_tokens SET used_at = datetime('now')
		 WHERE token = ? AND used_at IS NULL AND expires_at > datetime('now')`,
		token,
	)
	if err != nil {
		return nil, fmt.Errorf("consume magic link: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_link_tokens WHERE token = ?`, token)
	ml, err := scanMagicLink(row)
	if err != nil {
		return nil, fmt.Errorf("get consumed magic link: %w", err)
	}
	return ml, nil
}

// GetByToken returns the row for a token regardless of its state, or nil if
// no such token exists.
func (s *MagicLinkStore) GetByToken(token string) (*model.MagicLink, error) {
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_link_tokens WHERE token = ?`, token)
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get magic link by token: %w", err)
	}
	return ml, nil
}

// DeleteExpired removes tokens past their expiry, used or not.
func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_link_tokens WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
