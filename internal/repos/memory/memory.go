// Package memory is a process-local implementation of the repos stores.
// All stores share one mutex, so every operation is a single atomic step.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/internal/repos"
)

type store struct {
	mu sync.RWMutex

	ballots  map[string]model.Ballot // by user id
	winners  model.Winners
	wVersion int64
	settings model.Settings
	groups   map[string]model.Group // by id
	names    map[string]string      // group name -> id
	members  map[string]map[string]time.Time
}

// New returns a Repository backed by maps.
func New() *repos.Repository {
	s := &store{
		ballots: map[string]model.Ballot{},
		winners: model.Winners{},
		groups:  map[string]model.Group{},
		names:   map[string]string{},
		members: map[string]map[string]time.Time{},
	}
	return &repos.Repository{
		Ballots:  ballots{s},
		Winners:  winners{s},
		Settings: settings{s},
		Groups:   groups{s},
	}
}

func copyBallot(b model.Ballot) model.Ballot {
	b.Picks = b.Picks.Clone()
	if b.SubmittedAt != nil {
		t := *b.SubmittedAt
		b.SubmittedAt = &t
	}
	return b
}

type ballots struct{ s *store }

func (r ballots) GetByUser(_ context.Context, userID string) (model.Ballot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.ballots[userID]
	if !ok {
		return model.Ballot{}, fmt.Errorf("ballot for %s: %w", userID, model.ErrNotFound)
	}
	return copyBallot(b), nil
}

func (r ballots) SavePick(_ context.Context, userID, userName, category, pickKey string, now time.Time) (model.Ballot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.settings.BallotsLocked {
		return model.Ballot{}, fmt.Errorf("ballots are locked: %w", model.ErrLocked)
	}
	b, ok := r.s.ballots[userID]
	if !ok {
		b = model.Ballot{ID: uuid.NewString(), UserID: userID, UserName: userName, Picks: model.Picks{}, CreatedAt: now}
	}
	if b.Submitted() {
		return model.Ballot{}, fmt.Errorf("ballot already submitted: %w", model.ErrLocked)
	}
	b.Picks = b.Picks.Clone()
	b.Picks[category] = pickKey
	r.s.ballots[userID] = b
	return copyBallot(b), nil
}

func (r ballots) Submit(_ context.Context, userID string, now time.Time) (model.Ballot, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.ballots[userID]
	if !ok {
		return model.Ballot{}, false, fmt.Errorf("no ballot found: %w", model.ErrNotFound)
	}
	if b.Submitted() {
		return copyBallot(b), false, nil
	}
	if r.s.settings.BallotsLocked {
		return model.Ballot{}, false, fmt.Errorf("ballots are locked: %w", model.ErrLocked)
	}
	ts := now
	b.SubmittedAt = &ts
	r.s.ballots[userID] = b
	return copyBallot(b), true, nil
}

func (r ballots) ListSubmitted(_ context.Context) ([]model.Ballot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.submitted(func(string) bool { return true }), nil
}

func (r ballots) ListSubmittedByGroup(_ context.Context, groupID string) ([]model.Ballot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	members := r.s.members[groupID]
	return r.s.submitted(func(userID string) bool {
		_, ok := members[userID]
		return ok
	}), nil
}

func (s *store) submitted(keep func(userID string) bool) []model.Ballot {
	out := make([]model.Ballot, 0, len(s.ballots))
	for _, b := range s.ballots {
		if b.Submitted() && keep(b.UserID) {
			out = append(out, copyBallot(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(*out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(*out[j].SubmittedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

type winners struct{ s *store }

func (r winners) Get(_ context.Context) (model.Winners, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.winners.Clone(), nil
}

func (r winners) Replace(_ context.Context, w model.Winners, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.winners = w.Clone()
	r.s.wVersion++
	return nil
}

func (r winners) Set(_ context.Context, category, pickKey string, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.winners[category] = pickKey
	r.s.wVersion++
	return nil
}

func (r winners) Clear(_ context.Context, category string, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.winners, category)
	r.s.wVersion++
	return nil
}

type settings struct{ s *store }

func (r settings) Get(_ context.Context) (model.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.settings, nil
}

func (r settings) SetBallotsLocked(_ context.Context, locked bool, now time.Time) (model.Settings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings.BallotsLocked = locked
	r.s.settings.Version++
	r.s.settings.UpdatedAt = now
	return r.s.settings, nil
}

type groups struct{ s *store }

func (r groups) Create(_ context.Context, g model.Group) (model.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.names[g.Name]; dup {
		return model.Group{}, fmt.Errorf("a group named %q already exists: %w", g.Name, model.ErrConflict)
	}
	r.s.groups[g.ID] = g
	r.s.names[g.Name] = g.ID
	r.s.members[g.ID] = map[string]time.Time{g.CreatedBy: g.CreatedAt}
	return g, nil
}

func (r groups) Get(_ context.Context, id string) (model.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return model.Group{}, fmt.Errorf("group not found: %w", model.ErrNotFound)
	}
	return g, nil
}

func (r groups) Search(_ context.Context, term string, limit int) ([]model.GroupSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	term = strings.ToLower(term)
	out := make([]model.GroupSummary, 0)
	for _, g := range r.s.groups {
		if strings.Contains(strings.ToLower(g.Name), term) {
			out = append(out, model.GroupSummary{ID: g.ID, Name: g.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r groups) AddMember(_ context.Context, groupID, userID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[groupID]
	if !ok {
		return false, fmt.Errorf("group not found: %w", model.ErrNotFound)
	}
	if _, ok := m[userID]; ok {
		return false, nil
	}
	m[userID] = now
	return true, nil
}

func (r groups) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.members[groupID][userID]
	return ok, nil
}

func (r groups) ListForUser(_ context.Context, userID string) ([]model.GroupSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type joined struct {
		g  model.GroupSummary
		at time.Time
	}
	var js []joined
	for id, m := range r.s.members {
		if at, ok := m[userID]; ok {
			g := r.s.groups[id]
			js = append(js, joined{model.GroupSummary{ID: g.ID, Name: g.Name}, at})
		}
	}
	sort.Slice(js, func(i, j int) bool {
		if !js[i].at.Equal(js[j].at) {
			return js[i].at.Before(js[j].at)
		}
		return js[i].g.Name < js[j].g.Name
	})
	out := make([]model.GroupSummary, 0, len(js))
	for _, j := range js {
		out = append(out, j.g)
	}
	return out, nil
}
