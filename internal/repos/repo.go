package repos

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

// BallotStore persists one ballot per user.
type BallotStore interface {
	// GetByUser returns model.ErrNotFound when the user has no ballot.
	GetByUser(ctx context.Context, userID string) (model.Ballot, error)
	// SavePick creates the ballot on first use and merges the pick otherwise.
	// It fails with model.ErrLocked when ballots are locked or the ballot is submitted;
	// the lock flag is read in the same transaction as the write.
	SavePick(ctx context.Context, userID, userName, category, pickKey string, now time.Time) (model.Ballot, error)
	// Submit sets submitted_at once. The bool is false when the ballot was already submitted.
	Submit(ctx context.Context, userID string, now time.Time) (model.Ballot, bool, error)
	ListSubmitted(ctx context.Context) ([]model.Ballot, error)
	// ListSubmittedByGroup returns submitted ballots of the group's current members.
	ListSubmittedByGroup(ctx context.Context, groupID string) ([]model.Ballot, error)
}

// WinnersStore holds the winners singleton. Every write bumps its version.
type WinnersStore interface {
	Get(ctx context.Context) (model.Winners, error)
	Replace(ctx context.Context, winners model.Winners, now time.Time) error
	Set(ctx context.Context, category, pickKey string, now time.Time) error
	Clear(ctx context.Context, category string, now time.Time) error
}

// SettingsStore holds the settings singleton; a missing record reads as unlocked.
type SettingsStore interface {
	Get(ctx context.Context) (model.Settings, error)
	SetBallotsLocked(ctx context.Context, locked bool, now time.Time) (model.Settings, error)
}

type GroupStore interface {
	// Create inserts the group and the creator's membership together.
	// Duplicate names fail with model.ErrConflict from the unique index.
	Create(ctx context.Context, g model.Group) (model.Group, error)
	Get(ctx context.Context, id string) (model.Group, error)
	Search(ctx context.Context, term string, limit int) ([]model.GroupSummary, error)
	// AddMember is idempotent; joined reports whether a new row was written.
	AddMember(ctx context.Context, groupID, userID string, now time.Time) (joined bool, err error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]model.GroupSummary, error)
}

// DB is the part of a pgx pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	Ballots  BallotStore
	Winners  WinnersStore
	Settings SettingsStore
	Groups   GroupStore
}

// New wires the postgres implementations over one pool.
func New(db DB) *Repository {
	return &Repository{
		Ballots:  &BallotsRepo{db: db},
		Winners:  &WinnersRepo{db: db},
		Settings: &SettingsRepo{db: db},
		Groups:   &GroupsRepo{db: db},
	}
}
