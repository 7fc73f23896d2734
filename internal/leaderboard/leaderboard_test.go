package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sydney-cole/oscars-ballot/internal/catalog"
	"github.com/sydney-cole/oscars-ballot/internal/repos/memory"
	"github.com/sydney-cole/oscars-ballot/internal/service"
	"github.com/sydney-cole/oscars-ballot/pkg/cache"
	"github.com/sydney-cole/oscars-ballot/pkg/identity"
)

var (
	ann = identity.Identity{Subject: "ann", Name: "Ann"}
	bo  = identity.Identity{Subject: "bo", Name: "Bo"}
)

func setup(t *testing.T) (*service.Service, *cache.InMemoryCache, *Boards) {
	t.Helper()
	svc := service.New(memory.New(), catalog.Default(), nil, service.WithPasswordCost(bcrypt.MinCost))
	c := cache.NewInMemory()
	return svc, c, New(svc, c, nil, time.Minute)
}

func submit(t *testing.T, svc *service.Service, id identity.Identity) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SavePick(ctx, id, "Best Picture", "Oppenheimer")
	require.NoError(t, err)
	_, _, err = svc.SubmitBallot(ctx, id)
	require.NoError(t, err)
}

func TestGlobalIsCachedUntilBallotsChange(t *testing.T) {
	ctx := context.Background()
	svc, c, b := setup(t)

	submit(t, svc, ann)
	lb, err := b.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, lb.Total)
	_, ok := c.Get(ctx, globalKey)
	assert.True(t, ok)

	submit(t, svc, bo)
	lb, err = b.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, lb.Total, "served from cache")

	b.BallotsChanged(ctx)
	lb, err = b.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lb.Total)
}

func TestGroupBoardRequiresMembership(t *testing.T) {
	ctx := context.Background()
	svc, _, b := setup(t)

	g, err := svc.CreateGroup(ctx, ann, "Oscar Fam", "pw")
	require.NoError(t, err)
	submit(t, svc, ann)
	submit(t, svc, bo)

	_, member, err := b.Group(ctx, bo, g.ID)
	require.NoError(t, err)
	assert.False(t, member)

	lb, member, err := b.Group(ctx, ann, g.ID)
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 1, lb.Total)

	_, err = svc.JoinGroup(ctx, bo, g.ID, "pw")
	require.NoError(t, err)
	b.MembersChanged(ctx, g.ID)

	lb, member, err = b.Group(ctx, bo, g.ID)
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 2, lb.Total)
}

// interleavedCache runs beforeSet once, just before the first write lands.
type interleavedCache struct {
	*cache.InMemoryCache
	beforeSet func()
}

func (c *interleavedCache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if f := c.beforeSet; f != nil {
		c.beforeSet = nil
		f()
	}
	return c.InMemoryCache.Set(ctx, key, val, ttl)
}

func TestInvalidationDuringRefreshIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	svc := service.New(memory.New(), catalog.Default(), nil, service.WithPasswordCost(bcrypt.MinCost))
	c := &interleavedCache{InMemoryCache: cache.NewInMemory()}
	b := New(svc, c, nil, time.Minute)

	submit(t, svc, ann)
	c.beforeSet = func() {
		submit(t, svc, bo)
		b.BallotsChanged(ctx)
	}

	lb, err := b.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, lb.Total)
	_, ok := c.Get(ctx, globalKey)
	assert.False(t, ok, "board computed before the invalidation stays out of the cache")

	lb, err = b.Global(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lb.Total)
}

func TestJoinDuringGroupRefreshIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	svc := service.New(memory.New(), catalog.Default(), nil, service.WithPasswordCost(bcrypt.MinCost))
	c := &interleavedCache{InMemoryCache: cache.NewInMemory()}
	b := New(svc, c, nil, time.Minute)

	g, err := svc.CreateGroup(ctx, ann, "Oscar Fam", "pw")
	require.NoError(t, err)
	submit(t, svc, ann)
	submit(t, svc, bo)

	c.beforeSet = func() {
		_, err := svc.JoinGroup(ctx, bo, g.ID, "pw")
		require.NoError(t, err)
		b.MembersChanged(ctx, g.ID)
	}
	lb, _, err := b.Group(ctx, ann, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, lb.Total)

	lb, _, err = b.Group(ctx, ann, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lb.Total)
}

func TestRefreshCachesWhenNothingChanged(t *testing.T) {
	ctx := context.Background()
	svc, c, b := setup(t)
	submit(t, svc, ann)

	b.BallotsChanged(ctx)
	_, err := b.Refresh(ctx)
	require.NoError(t, err)
	_, ok := c.Get(ctx, globalKey)
	assert.True(t, ok)
}

func TestNewDefaultsTTL(t *testing.T) {
	svc, c, _ := setup(t)
	assert.Equal(t, DefaultTTL, New(svc, c, nil, 0).ttl)
}
