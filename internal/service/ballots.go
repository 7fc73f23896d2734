package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/internal/scoring"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

// MyBallot returns the caller's ballot, or nil when there is none or the caller is anonymous.
func (s *Service) MyBallot(ctx context.Context, id identity.Identity) (*model.Ballot, error) {
	if id.Anonymous() {
		return nil, nil
	}
	b, err := s.repo.Ballots.GetByUser(ctx, id.Subject)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SavePick records one category pick, creating the ballot on first use.
func (s *Service) SavePick(ctx context.Context, id identity.Identity, category, pickKey string) (model.Ballot, error) {
	if id.Anonymous() {
		return model.Ballot{}, fmt.Errorf("sign in to save picks: %w", model.ErrUnauthenticated)
	}
	if err := s.validatePick(category, pickKey); err != nil {
		return model.Ballot{}, err
	}
	return s.repo.Ballots.SavePick(ctx, id.Subject, id.DisplayName(), category, pickKey, s.now().UTC())
}

// SubmitBallot finalizes the caller's ballot. Submitting twice is a no-op;
// submitted is true only for the call that made the transition.
func (s *Service) SubmitBallot(ctx context.Context, id identity.Identity) (b model.Ballot, submitted bool, err error) {
	if id.Anonymous() {
		return model.Ballot{}, false, fmt.Errorf("sign in to submit: %w", model.ErrUnauthenticated)
	}
	return s.repo.Ballots.Submit(ctx, id.Subject, s.now().UTC())
}

// Leaderboard ranks every submitted ballot.
func (s *Service) Leaderboard(ctx context.Context) (model.Leaderboard, error) {
	ballots, err := s.repo.Ballots.ListSubmitted(ctx)
	if err != nil {
		return model.Leaderboard{}, err
	}
	return s.build(ctx, ballots)
}

func (s *Service) build(ctx context.Context, ballots []model.Ballot) (model.Leaderboard, error) {
	winners, err := s.repo.Winners.Get(ctx)
	if err != nil {
		return model.Leaderboard{}, err
	}
	return scoring.Build(ballots, winners, s.catalog.Len()), nil
}

func (s *Service) validatePick(category, pickKey string) error {
	if _, ok := s.catalog.Category(category); !ok {
		return fmt.Errorf("unknown category %q: %w", category, model.ErrInvalidInput)
	}
	if _, ok := s.catalog.Lookup(category, pickKey); !ok {
		return fmt.Errorf("%q is not nominated for %s: %w", pickKey, category, model.ErrInvalidInput)
	}
	return nil
}
