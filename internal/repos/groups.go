package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type GroupsRepo struct {
	db DB
}

func (r *GroupsRepo) Create(ctx context.Context, g model.Group) (model.Group, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Group{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO ballot_groups (id, name, password_hash, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`, g.ID, g.Name, g.PasswordHash, g.CreatedBy, g.CreatedAt)
	if isUniqueViolation(err) {
		return model.Group{}, fmt.Errorf("a group named %q already exists: %w", g.Name, model.ErrConflict)
	}
	if err != nil {
		return model.Group{}, err
	}
	_, err = tx.Exec(ctx, `INSERT INTO ballot_group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		g.ID, g.CreatedBy, g.CreatedAt)
	if err != nil {
		return model.Group{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Group{}, err
	}
	return g, nil
}

func (r *GroupsRepo) Get(ctx context.Context, id string) (model.Group, error) {
	var g model.Group
	q := psql.Select("id", "name", "password_hash", "created_by", "created_at").
		From("ballot_groups").
		Where(sq.Eq{"id": id})
	err := qRow(ctx, r.db, q).Scan(&g.ID, &g.Name, &g.PasswordHash, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Group{}, fmt.Errorf("group not found: %w", model.ErrNotFound)
	}
	return g, err
}

func (r *GroupsRepo) Search(ctx context.Context, term string, limit int) ([]model.GroupSummary, error) {
	q := psql.Select("id", "name").
		From("ballot_groups").
		Where("strpos(lower(name), ?) > 0", strings.ToLower(term)).
		OrderBy("name").
		Limit(uint64(limit))
	return r.summaries(ctx, q)
}

func (r *GroupsRepo) AddMember(ctx context.Context, groupID, userID string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `INSERT INTO ballot_group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING`, groupID, userID, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *GroupsRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM ballot_group_members WHERE group_id = $1 AND user_id = $2)`, groupID, userID).Scan(&ok)
	return ok, err
}

func (r *GroupsRepo) ListForUser(ctx context.Context, userID string) ([]model.GroupSummary, error) {
	q := psql.Select("g.id", "g.name").
		From("ballot_groups g").
		Join("ballot_group_members m ON m.group_id = g.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("m.joined_at", "g.name")
	return r.summaries(ctx, q)
}

func (r *GroupsRepo) summaries(ctx context.Context, q sq.SelectBuilder) ([]model.GroupSummary, error) {
	rows, err := qQuery(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.GroupSummary])
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.GroupSummary{}
	}
	return out, nil
}
