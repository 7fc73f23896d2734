package repos

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type WinnersRepo struct {
	db DB
}

func (r *WinnersRepo) Get(ctx context.Context) (model.Winners, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT picks FROM winners WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Winners{}, nil
	}
	if err != nil {
		return nil, err
	}
	p, err := decodePicks(raw)
	if err != nil {
		return nil, err
	}
	return model.Winners(p), nil
}

func (r *WinnersRepo) Replace(ctx context.Context, winners model.Winners, now time.Time) error {
	doc, err := jsonText(winners)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO winners AS w (id, picks, version, updated_at) VALUES (1, $1::jsonb, 1, $2)
		ON CONFLICT (id) DO UPDATE SET picks = EXCLUDED.picks, version = w.version + 1, updated_at = EXCLUDED.updated_at`,
		doc, now)
	return err
}

func (r *WinnersRepo) Set(ctx context.Context, category, pickKey string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO winners AS w (id, picks, version, updated_at)
		VALUES (1, jsonb_build_object($1::text, $2::text), 1, $3)
		ON CONFLICT (id) DO UPDATE SET picks = w.picks || EXCLUDED.picks, version = w.version + 1, updated_at = EXCLUDED.updated_at`,
		category, pickKey, now)
	return err
}

func (r *WinnersRepo) Clear(ctx context.Context, category string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE winners SET picks = picks - $1::text, version = version + 1, updated_at = $2 WHERE id = 1`,
		category, now)
	return err
}
