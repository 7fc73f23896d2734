package repos

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type SettingsRepo struct {
	db DB
}

func (r *SettingsRepo) Get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := r.db.QueryRow(ctx, `SELECT ballots_locked, version, updated_at FROM settings WHERE id = 1`).
		Scan(&s.BallotsLocked, &s.Version, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Settings{}, nil
	}
	return s, err
}

func (r *SettingsRepo) SetBallotsLocked(ctx context.Context, locked bool, now time.Time) (model.Settings, error) {
	var s model.Settings
	err := r.db.QueryRow(ctx, `
		INSERT INTO settings AS s (id, ballots_locked, version, updated_at) VALUES (1, $1, 1, $2)
		ON CONFLICT (id) DO UPDATE SET ballots_locked = EXCLUDED.ballots_locked, version = s.version + 1, updated_at = EXCLUDED.updated_at
		RETURNING ballots_locked, version, updated_at`, locked, now).
		Scan(&s.BallotsLocked, &s.Version, &s.UpdatedAt)
	return s, err
}
