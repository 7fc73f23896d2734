package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

const (
	MaxGroupNameLen = 50
	SearchLimit     = 20
)

// CreateGroup creates a group and enrolls the caller in it.
func (s *Service) CreateGroup(ctx context.Context, id identity.Identity, name, password string) (model.GroupSummary, error) {
	if id.Anonymous() {
		return model.GroupSummary{}, fmt.Errorf("sign in to create a group: %w", model.ErrUnauthenticated)
	}
	name, password = strings.TrimSpace(name), strings.TrimSpace(password)
	switch {
	case name == "":
		return model.GroupSummary{}, fmt.Errorf("group name is required: %w", model.ErrInvalidInput)
	case utf8.RuneCountInString(name) > MaxGroupNameLen:
		return model.GroupSummary{}, fmt.Errorf("group name must be %d characters or less: %w", MaxGroupNameLen, model.ErrInvalidInput)
	case password == "":
		return model.GroupSummary{}, fmt.Errorf("password is required: %w", model.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return model.GroupSummary{}, fmt.Errorf("hash password: %w", err)
	}
	g, err := s.repo.Groups.Create(ctx, model.Group{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedBy:    id.Subject,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return model.GroupSummary{}, err
	}
	return model.GroupSummary{ID: g.ID, Name: g.Name}, nil
}

// JoinGroup adds the caller to the group. Joining again is a no-op.
func (s *Service) JoinGroup(ctx context.Context, id identity.Identity, groupID, password string) (joined bool, err error) {
	if id.Anonymous() {
		return false, fmt.Errorf("sign in to join a group: %w", model.ErrUnauthenticated)
	}
	g, err := s.repo.Groups.Get(ctx, groupID)
	if err != nil {
		return false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(strings.TrimSpace(password)))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, fmt.Errorf("incorrect password: %w", model.ErrUnauthorized)
	}
	if err != nil {
		return false, fmt.Errorf("compare password: %w", err)
	}
	return s.repo.Groups.AddMember(ctx, g.ID, id.Subject, s.now().UTC())
}

// SearchGroups matches names case-insensitively. A blank term matches nothing.
func (s *Service) SearchGroups(ctx context.Context, term string) ([]model.GroupSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.GroupSummary{}, nil
	}
	return s.repo.Groups.Search(ctx, term, SearchLimit)
}

func (s *Service) MyGroups(ctx context.Context, id identity.Identity) ([]model.GroupSummary, error) {
	if id.Anonymous() {
		return []model.GroupSummary{}, nil
	}
	return s.repo.Groups.ListForUser(ctx, id.Subject)
}

// GroupBallots returns the submitted ballots of the group's members.
// member is false, and ballots nil, when the caller may not see the group.
func (s *Service) GroupBallots(ctx context.Context, id identity.Identity, groupID string) (ballots []model.Ballot, member bool, err error) {
	if id.Anonymous() {
		return nil, false, nil
	}
	member, err = s.repo.Groups.IsMember(ctx, groupID, id.Subject)
	if err != nil || !member {
		return nil, false, err
	}
	ballots, err = s.repo.Ballots.ListSubmittedByGroup(ctx, groupID)
	if err != nil {
		return nil, false, err
	}
	return ballots, true, nil
}

// GroupLeaderboard ranks the group's submitted ballots.
func (s *Service) GroupLeaderboard(ctx context.Context, id identity.Identity, groupID string) (model.Leaderboard, bool, error) {
	ballots, member, err := s.GroupBallots(ctx, id, groupID)
	if err != nil || !member {
		return model.Leaderboard{}, false, err
	}
	lb, err := s.build(ctx, ballots)
	return lb, err == nil, err
}

// IsMember reports whether the caller belongs to the group.
func (s *Service) IsMember(ctx context.Context, id identity.Identity, groupID string) (bool, error) {
	if id.Anonymous() {
		return false, nil
	}
	return s.repo.Groups.IsMember(ctx, groupID, id.Subject)
}
