// Package leaderboard serves ranked boards through the response cache and
// announces changes on the live hub.
package leaderboard

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sydney-cole/oscars-ballot/internal/live"
	"github.com/sydney-cole/oscars-ballot/internal/model"
	"github.com/sydney-cole/oscars-ballot/internal/service"
	"github.com/sydney-cole/oscars-ballot/pkg/cache"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

const (
	keyPrefix  = "leaderboard:"
	globalKey  = keyPrefix + live.ScopeGlobal
	groupScope = keyPrefix + "group:"

	DefaultTTL = 2 * time.Minute
)

type Boards struct {
	svc   *service.Service
	cache cache.Cache
	hub   *live.Hub
	ttl   time.Duration

	// gen moves on every invalidation. A board computed under an older
	// generation must not outlive the invalidation that followed it.
	gen atomic.Uint64
}

// New wires the boards. hub may be nil when live updates are disabled.
func New(svc *service.Service, c cache.Cache, hub *live.Hub, ttl time.Duration) *Boards {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Boards{svc: svc, cache: c, hub: hub, ttl: ttl}
}

func GroupKey(groupID string) string { return groupScope + groupID }

// Global returns the board over every submitted ballot.
func (b *Boards) Global(ctx context.Context) (model.Leaderboard, error) {
	if lb, ok := b.cached(ctx, globalKey); ok {
		return lb, nil
	}
	return b.Refresh(ctx)
}

// Refresh recomputes the global board and stores it.
func (b *Boards) Refresh(ctx context.Context) (model.Leaderboard, error) {
	gen := b.gen.Load()
	lb, err := b.svc.Leaderboard(ctx)
	if err != nil {
		return model.Leaderboard{}, err
	}
	b.store(ctx, globalKey, lb, gen)
	return lb, nil
}

// Group returns the group's board; member is false when the caller may not see it.
func (b *Boards) Group(ctx context.Context, id identity.Identity, groupID string) (model.Leaderboard, bool, error) {
	member, err := b.svc.IsMember(ctx, id, groupID)
	if err != nil || !member {
		return model.Leaderboard{}, false, err
	}
	key := GroupKey(groupID)
	if lb, ok := b.cached(ctx, key); ok {
		return lb, true, nil
	}
	gen := b.gen.Load()
	lb, member, err := b.svc.GroupLeaderboard(ctx, id, groupID)
	if err != nil || !member {
		return model.Leaderboard{}, member, err
	}
	b.store(ctx, key, lb, gen)
	return lb, true, nil
}

// BallotsChanged drops every cached board after a submission or a winners change.
func (b *Boards) BallotsChanged(ctx context.Context) {
	b.gen.Add(1)
	if err := b.cache.DeletePrefix(ctx, keyPrefix); err != nil {
		log.Warn().Err(err).Msg("leaderboard cache invalidation failed")
	}
	b.publish(live.ScopeGlobal)
}

// MembersChanged drops one group's board after a join.
func (b *Boards) MembersChanged(ctx context.Context, groupID string) {
	b.gen.Add(1)
	if err := b.cache.Delete(ctx, GroupKey(groupID)); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).Msg("group leaderboard invalidation failed")
	}
	b.publish(groupID)
}

func (b *Boards) publish(scope string) {
	if b.hub != nil {
		b.hub.Publish(scope)
	}
}

func (b *Boards) cached(ctx context.Context, key string) (model.Leaderboard, bool) {
	raw, ok := b.cache.Get(ctx, key)
	if !ok {
		return model.Leaderboard{}, false
	}
	var lb model.Leaderboard
	if err := json.Unmarshal([]byte(raw), &lb); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached leaderboard")
		return model.Leaderboard{}, false
	}
	return lb, true
}

// store caches lb computed under generation gen. An invalidation that ran
// while lb was computed or written means lb may be stale: the entry is dropped.
func (b *Boards) store(ctx context.Context, key string, lb model.Leaderboard, gen uint64) {
	if b.gen.Load() != gen {
		return
	}
	raw, err := json.Marshal(lb)
	if err != nil {
		return
	}
	if err := b.cache.Set(ctx, key, string(raw), b.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("leaderboard cache write failed")
		return
	}
	if b.gen.Load() != gen {
		if err := b.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("stale leaderboard eviction failed")
		}
	}
}
