package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type BallotsRepo struct {
	db DB
}

const ballotColumns = "b.id, b.user_id, b.user_name, b.picks, b.created_at, b.submitted_at"

func scanBallot(row pgx.Row) (model.Ballot, error) {
	var (
		b         model.Ballot
		raw       []byte
		submitted pgtype.Timestamptz
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.UserName, &raw, &b.CreatedAt, &submitted); err != nil {
		return model.Ballot{}, err
	}
	picks, err := decodePicks(raw)
	if err != nil {
		return model.Ballot{}, err
	}
	b.Picks = picks
	b.SubmittedAt = timePtr(submitted)
	return b, nil
}

func collectBallots(rows pgx.Rows) ([]model.Ballot, error) {
	defer rows.Close()
	out := make([]model.Ballot, 0)
	for rows.Next() {
		b, err := scanBallot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BallotsRepo) GetByUser(ctx context.Context, userID string) (model.Ballot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ballotColumns+` FROM ballots b WHERE b.user_id = $1`, userID)
	b, err := scanBallot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ballot{}, fmt.Errorf("ballot for %s: %w", userID, model.ErrNotFound)
	}
	return b, err
}

// lockedForShare reads the lock flag and holds a share lock on the settings row
// until the transaction ends, so a concurrent toggle waits for this write.
func lockedForShare(ctx context.Context, tx pgx.Tx) (bool, error) {
	var locked bool
	err := tx.QueryRow(ctx, `SELECT ballots_locked FROM settings WHERE id = 1 FOR SHARE`).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return locked, err
}

func (r *BallotsRepo) SavePick(ctx context.Context, userID, userName, category, pickKey string, now time.Time) (model.Ballot, error) {
	patch, err := jsonText(map[string]string{category: pickKey})
	if err != nil {
		return model.Ballot{}, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Ballot{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	locked, err := lockedForShare(ctx, tx)
	if err != nil {
		return model.Ballot{}, err
	}
	if locked {
		return model.Ballot{}, fmt.Errorf("ballots are locked: %w", model.ErrLocked)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO ballots AS b (id, user_id, user_name, picks, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (user_id) DO UPDATE SET picks = b.picks || EXCLUDED.picks
		WHERE b.submitted_at IS NULL
		RETURNING `+ballotColumns,
		uuid.NewString(), userID, userName, patch, now)
	b, err := scanBallot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ballot{}, fmt.Errorf("ballot already submitted: %w", model.ErrLocked)
	}
	if err != nil {
		return model.Ballot{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Ballot{}, err
	}
	return b, nil
}

func (r *BallotsRepo) Submit(ctx context.Context, userID string, now time.Time) (model.Ballot, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Ballot{}, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	locked, err := lockedForShare(ctx, tx)
	if err != nil {
		return model.Ballot{}, false, err
	}

	b, err := scanBallot(tx.QueryRow(ctx, `SELECT `+ballotColumns+` FROM ballots b WHERE b.user_id = $1 FOR UPDATE`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ballot{}, false, fmt.Errorf("no ballot found: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Ballot{}, false, err
	}
	if b.Submitted() {
		return b, false, nil
	}
	if locked {
		return model.Ballot{}, false, fmt.Errorf("ballots are locked: %w", model.ErrLocked)
	}

	b, err = scanBallot(tx.QueryRow(ctx,
		`UPDATE ballots AS b SET submitted_at = $2 WHERE b.id = $1 RETURNING `+ballotColumns, b.ID, now))
	if err != nil {
		return model.Ballot{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Ballot{}, false, err
	}
	return b, true, nil
}

func (r *BallotsRepo) ListSubmitted(ctx context.Context) ([]model.Ballot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ballotColumns+` FROM ballots b
		WHERE b.submitted_at IS NOT NULL ORDER BY b.submitted_at, b.user_id`)
	if err != nil {
		return nil, err
	}
	return collectBallots(rows)
}

func (r *BallotsRepo) ListSubmittedByGroup(ctx context.Context, groupID string) ([]model.Ballot, error) {
	q := psql.Select(ballotColumns).
		From("ballots b").
		Join("ballot_group_members m ON m.user_id = b.user_id").
		Where(sq.Eq{"m.group_id": groupID}).
		Where(sq.NotEq{"b.submitted_at": nil}).
		OrderBy("b.submitted_at", "b.user_id")
	rows, err := qQuery(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	return collectBallots(rows)
}
