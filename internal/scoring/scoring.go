// Package scoring computes ballot scores and the leaderboard order.
package scoring

import (
	"sort"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

// Score counts the announced categories where picks matches the winner.
// Picks for categories without a winner never count.
func Score(picks model.Picks, winners model.Winners) int {
	n := 0
	for category, winner := range winners {
		if winner != "" && picks[category] == winner {
			n++
		}
	}
	return n
}

// Rank orders submitted ballots for display. Scores are nil while no winner is
// announced. Order is score desc, then earlier submission, then user id.
func Rank(ballots []model.Ballot, winners model.Winners) []model.RankedEntry {
	known := announced(winners)
	out := make([]model.RankedEntry, 0, len(ballots))
	for _, b := range ballots {
		e := model.RankedEntry{
			ID:          b.ID,
			UserID:      b.UserID,
			Name:        b.UserName,
			TotalPicked: b.Picks.Filled(),
		}
		if b.SubmittedAt != nil {
			e.SubmittedAt = *b.SubmittedAt
		}
		if known {
			s := Score(b.Picks, winners)
			e.Score = &s
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scoreOf(out[i]), scoreOf(out[j])
		if si != sj {
			return si > sj
		}
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Build assembles the leaderboard payload.
func Build(ballots []model.Ballot, winners model.Winners, totalCategories int) model.Leaderboard {
	ranked := Rank(ballots, winners)
	return model.Leaderboard{
		Ranked:          ranked,
		Total:           len(ranked),
		WinnersKnown:    announced(winners),
		TotalCategories: totalCategories,
	}
}

func scoreOf(e model.RankedEntry) int {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

func announced(w model.Winners) bool {
	return len(w) > 0
}
