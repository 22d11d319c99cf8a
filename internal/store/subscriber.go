package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanhale/solstice/internal/model"
)

type SubscriberStore struct {
	db *sql.DB
}

func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

func scanSubscriber(scanner interface{ Scan(...any) error }) (*model.Subscriber, error) {
	var sub model.Subscriber
	var response sql.NullString

	err := scanner.Scan(&sub.ID, &sub.Email, &response, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if response.Valid {
		sub.Response = &response.String
	}
	return &sub, nil
}

const subscriberCols = `id, email, response, created_at, updated_at`

// Upsert records an email and optional question response. A repeat email
// updates the existing row; a nil new response never overwrites a stored
// non-nil one.
func (s *SubscriberStore) Upsert(email string, response *string) (*model.Subscriber, error) {
	var resp sql.NullString
	if response != nil {
		resp = sql.NullString{String: *response, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO subscribers (email, response) VALUES (?, ?)
		 ON CONFLICT(email) DO UPDATE SET
		   response = COALESCE(excluded.response, subscribers.response),
		   updated_at = datetime('now')`,
		email, resp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	return s.GetByEmail(email)
}

func (s *SubscriberStore) GetByEmail(email string) (*model.Subscriber, error) {
	row := s.db.QueryRow(`SELECT `+subscriberCols+` FROM subscribers WHERE email = ?`, email)
	sub, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return sub, nil
}

// List returns all subscribers ordered by creation time.
func (s *SubscriberStore) List() ([]model.Subscriber, error) {
	rows, err := s.db.Query(`SELECT ` + subscriberCols + ` FROM subscribers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Count returns the number of subscribers.
func (s *SubscriberStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}
