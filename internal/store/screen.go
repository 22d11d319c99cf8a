package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rowanhale/solstice/internal/model"
)

type ScreenStore struct {
	db *sql.DB
}

func NewScreenStore(db *sql.DB) *ScreenStore {
	return &ScreenStore{db: db}
}

func scanScreen(scanner interface{ Scan(...any) error }) (*model.IntroScreen, error) {
	var sc model.IntroScreen
	var options string

	err := scanner.Scan(&sc.ID, &sc.Kind, &sc.SortOrder, &sc.Title, &sc.Body, &options, &sc.AllowSkip, &sc.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(options), &sc.Options); err != nil {
		return nil, fmt.Errorf("decode screen options: %w", err)
	}
	return &sc, nil
}

const screenCols = `id, kind, sort_order, title, body, options, allow_skip, created_at`

func encodeOptions(opts []model.ScreenOption) (string, error) {
	if opts == nil {
		opts = []model.ScreenOption{}
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode screen options: %w", err)
	}
	return string(data), nil
}

func (s *ScreenStore) Create(sc model.IntroScreen) (*model.IntroScreen, error) {
	options, err := encodeOptions(sc.Options)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO intro_screens (kind, sort_order, title, body, options, allow_skip) VALUES (?, ?, ?, ?, ?, ?)`,
		sc.Kind, sc.SortOrder, sc.Title, sc.Body, options, sc.AllowSkip,
	)
	if err != nil {
		return nil, fmt.Errorf("insert screen: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScreenStore) GetByID(id int64) (*model.IntroScreen, error) {
	row := s.db.QueryRow(`SELECT `+screenCols+` FROM intro_screens WHERE id = ?`, id)
	sc, err := scanScreen(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get screen: %w", err)
	}
	return sc, nil
}

// List returns all configured screens in ascending sort order. The gate
// presents them strictly in this order.
func (s *ScreenStore) List() ([]model.IntroScreen, error) {
	rows, err := s.db.Query(`SELECT ` + screenCols + ` FROM intro_screens ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list screens: %w", err)
	}
	defer rows.Close()

	var screens []model.IntroScreen
	for rows.Next() {
		sc, err := scanScreen(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screen: %w", err)
		}
		screens = append(screens, *sc)
	}
	return screens, rows.Err()
}

func (s *ScreenStore) Update(id int64, sc model.IntroScreen) (*model.IntroScreen, error) {
	options, err := encodeOptions(sc.Options)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE intro_screens SET kind = ?, sort_order = ?, title = ?, body = ?, options = ?, allow_skip = ? WHERE id = ?`,
		sc.Kind, sc.SortOrder, sc.Title, sc.Body, options, sc.AllowSkip, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update screen: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScreenStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM intro_screens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete screen: %w", err)
	}
	return nil
}
