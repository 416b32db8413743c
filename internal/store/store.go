// Package store persists scanned cards and user settings in a local sqlite
// database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ocrtools/cardscan/internal/common"
	"github.com/ocrtools/cardscan/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	website    TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	score      INTEGER NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store wraps the sqlite handle.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open store")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "apply schema")
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveCard inserts or replaces a card by its ID.
func (s *Store) SaveCard(ctx context.Context, c entity.BusinessCard) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cards
		(id, name, title, company, email, phone, website, address, score, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Title, c.Company, c.Email, c.Phone,
		c.Website, c.Address, c.Score, c.Status, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return common.WrapError(err, "save card")
	}
	s.logger.Debug("store.card.saved", "id", c.ID)
	return nil
}

// GetCard returns one card by ID, or common.ErrNotFound.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (entity.BusinessCard, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, title, company, email, phone, website, address, score, status, created_at
		FROM cards WHERE id = ?`, id.String())
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.BusinessCard{}, common.ErrNotFound
	}
	return c, err
}

// ListCards returns all saved cards, newest first.
func (s *Store) ListCards(ctx context.Context) ([]entity.BusinessCard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, title, company, email, phone, website, address, score, status, created_at
		FROM cards ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.WrapError(err, "list cards")
	}
	defer func() { _ = rows.Close() }()

	var out []entity.BusinessCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCard removes one card.
func (s *Store) DeleteCard(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(err, "delete card")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetSetting returns a stored setting value, or "" if unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", common.WrapError(err, "get setting")
	}
	return v, nil
}

// SetSetting stores a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return common.WrapError(err, "set setting")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(r rowScanner) (entity.BusinessCard, error) {
	var c entity.BusinessCard
	var id, created string
	if err := r.Scan(&id, &c.Name, &c.Title, &c.Company, &c.Email, &c.Phone,
		&c.Website, &c.Address, &c.Score, &c.Status, &created); err != nil {
		return entity.BusinessCard{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return entity.BusinessCard{}, fmt.Errorf("bad card id %q: %w", id, err)
	}
	c.ID = parsed
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		c.CreatedAt = ts
	}
	return c, nil
}
