// Package draft keeps an in-progress ballot on the user's machine until it is
// synced to the server.
package draft

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	metaStep = "step"
	metaName = "name"
)

type Store struct {
	db *sql.DB
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, "migrations")
}

// Open opens (or creates) the draft database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate draft db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context) (model.Picks, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, pick_key FROM draft_picks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := model.Picks{}
	for rows.Next() {
		var category, pickKey string
		if err := rows.Scan(&category, &pickKey); err != nil {
			return nil, err
		}
		out[category] = pickKey
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, category, pickKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO draft_picks (category, pick_key, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (category) DO UPDATE SET pick_key = excluded.pick_key, updated_at = excluded.updated_at`,
		category, pickKey)
	return err
}

// Step is the index of the category the user was last looking at.
func (s *Store) Step(ctx context.Context) (int, error) {
	v, err := s.meta(ctx, metaStep)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.Atoi(v)
}

func (s *Store) SetStep(ctx context.Context, step int) error {
	if step < 0 {
		return fmt.Errorf("step %d: %w", step, model.ErrInvalidInput)
	}
	return s.setMeta(ctx, metaStep, strconv.Itoa(step))
}

// Name is the display name entered before signing in.
func (s *Store) Name(ctx context.Context) (string, error) {
	return s.meta(ctx, metaName)
}

func (s *Store) SetName(ctx context.Context, name string) error {
	return s.setMeta(ctx, metaName, name)
}

// Clear drops picks, step and name.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_picks`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_meta`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM draft_meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) setMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO draft_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
