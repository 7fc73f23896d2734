// Package picks defines the one contract both ballot stores implement: the
// local draft on the user's machine and the server ballot.
package picks

import (
	"context"
	"fmt"
	"sort"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

type Repository interface {
	Load(ctx context.Context) (model.Picks, error)
	Save(ctx context.Context, category, pickKey string) error
}

// Sync copies every filled pick from src into dst, skipping picks dst already
// holds. Categories listed in order go first, in that order; the rest follow by
// name. It stops at the first failed write and reports how many picks were
// copied before it.
func Sync(ctx context.Context, src, dst Repository, order []string) (int, error) {
	from, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source picks: %w", err)
	}
	have, err := dst.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load destination picks: %w", err)
	}

	pos := make(map[string]int, len(order))
	for i, c := range order {
		pos[c] = i
	}
	categories := make([]string, 0, len(from))
	for c, k := range from {
		if k != "" && have[c] != k {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		pi, iok := pos[categories[i]]
		pj, jok := pos[categories[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return categories[i] < categories[j]
		}
	})

	for i, c := range categories {
		if err := dst.Save(ctx, c, from[c]); err != nil {
			return i, fmt.Errorf("save %s: %w", c, err)
		}
	}
	return len(categories), nil
}
