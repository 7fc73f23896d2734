package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sydney-cole/oscars-ballot/internal/model"
)

// Refresher recomputes a cached leaderboard.
type Refresher interface {
	Refresh(ctx context.Context) (model.Leaderboard, error)
}

// WarmLeaderboard fills the cache once at startup so the first request is served from it.
func WarmLeaderboard(ctx context.Context, r Refresher) error {
	lb, err := r.Refresh(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("ballots", lb.Total).Bool("winners_known", lb.WinnersKnown).Msg("leaderboard cache warmed")
	return nil
}

// StartLeaderboardRefresh recomputes the cached leaderboard every interval, so
// entries never outlive the cache TTL even when no write invalidates them.
func StartLeaderboardRefresh(ctx context.Context, r Refresher, every time.Duration) {
	if every <= 0 {
		log.Warn().Msg("leaderboard refresh disabled")
		return
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				lb, err := r.Refresh(ctx)
				if err != nil {
					log.Error().Err(err).Msg("leaderboard refresh failed")
					continue
				}
				log.Debug().Int("ballots", lb.Total).Msg("leaderboard refreshed")
			}
		}
	}()
}
