package service

import (
	"context"
	"fmt"

	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

func (s *Service) requireAdmin(id identity.Identity) error {
	if id.Anonymous() {
		return fmt.Errorf("sign in required: %w", model.ErrUnauthenticated)
	}
	if !s.IsAdmin(id) {
		return fmt.Errorf("admin only: %w", model.ErrUnauthorized)
	}
	return nil
}

func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	return s.repo.Settings.Get(ctx)
}

// SetBallotsLocked toggles the lock flag. Setting the current value again only bumps the version.
func (s *Service) SetBallotsLocked(ctx context.Context, id identity.Identity, locked bool) (model.Settings, error) {
	if err := s.requireAdmin(id); err != nil {
		return model.Settings{}, err
	}
	return s.repo.Settings.SetBallotsLocked(ctx, locked, s.now().UTC())
}

func (s *Service) Winners(ctx context.Context) (model.Winners, error) {
	return s.repo.Winners.Get(ctx)
}

// SetWinners replaces the winners map. Empty values mean "not yet announced" and are dropped.
func (s *Service) SetWinners(ctx context.Context, id identity.Identity, winners model.Winners) (model.Winners, error) {
	if err := s.requireAdmin(id); err != nil {
		return nil, err
	}
	clean := make(model.Winners, len(winners))
	for category, pickKey := range winners {
		if pickKey == "" {
			if _, ok := s.catalog.Category(category); !ok {
				return nil, fmt.Errorf("unknown category %q: %w", category, model.ErrInvalidInput)
			}
			continue
		}
		if err := s.validatePick(category, pickKey); err != nil {
			return nil, err
		}
		clean[category] = pickKey
	}
	if err := s.repo.Winners.Replace(ctx, clean, s.now().UTC()); err != nil {
		return nil, err
	}
	return clean, nil
}

// SetWinner announces one category. An empty pick key withdraws the announcement.
func (s *Service) SetWinner(ctx context.Context, id identity.Identity, category, pickKey string) (model.Winners, error) {
	if err := s.requireAdmin(id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if pickKey == "" {
		if _, ok := s.catalog.Category(category); !ok {
			return nil, fmt.Errorf("unknown category %q: %w", category, model.ErrInvalidInput)
		}
		if err := s.repo.Winners.Clear(ctx, category, now); err != nil {
			return nil, err
		}
	} else {
		if err := s.validatePick(category, pickKey); err != nil {
			return nil, err
		}
		if err := s.repo.Winners.Set(ctx, category, pickKey, now); err != nil {
			return nil, err
		}
	}
	return s.repo.Winners.Get(ctx)
}
