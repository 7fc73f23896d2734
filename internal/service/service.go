// Package service holds the ballot, group and admin operations on top of the stores.
package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/repos"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

type Service struct {
	repo    *repos.Repository
	catalog *catalog.Catalog
	admins  map[string]struct{}

	now          func() time.Time
	passwordCost int
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPasswordCost sets the bcrypt cost for group passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

func New(repo *repos.Repository, cat *catalog.Catalog, adminIDs []string, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		catalog:      cat,
		admins:       make(map[string]struct{}, len(adminIDs)),
		now:          time.Now,
		passwordCost: bcrypt.DefaultCost,
	}
	for _, id := range adminIDs {
		if id != "" {
			s.admins[id] = struct{}{}
		}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// IsAdmin reports whether id is on the admin allow-list.
func (s *Service) IsAdmin(id identity.Identity) bool {
	if id.Anonymous() {
		return false
	}
	_, ok := s.admins[id.Subject]
	return ok
}
