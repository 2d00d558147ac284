package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/pricing"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := cache.Get(ctx, user)
	require.ErrorIs(t, err, ErrCacheMiss)

	view := View{ID: uuid.New(), UserID: user, TotalItems: 2, Subtotal: pricing.MustParse("100000"), Discount: pricing.MustParse("10000"), Total: pricing.MustParse("90000")}
	require.NoError(t, cache.Set(ctx, user, view))
	require.True(t, mr.Exists(cacheKey(user)))
	ttl := mr.TTL(cacheKey(user))
	require.GreaterOrEqual(t, ttl, time.Minute)
	require.Less(t, ttl, time.Minute+time.Minute/5)

	got, err := cache.Get(ctx, user)
	require.NoError(t, err)
	require.Equal(t, view.ID, got.ID)
	require.True(t, view.Total.Equal(got.Total))

	require.NoError(t, cache.Delete(ctx, user))
	_, err = cache.Get(ctx, user)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheRejectsOlderVersion(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, cache.Set(ctx, user, View{UserID: user, TotalItems: 2, Version: 3}))
	require.NoError(t, cache.Set(ctx, user, View{UserID: user, TotalItems: 0, Version: 2}))
	got, err := cache.Get(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Version)
	require.Equal(t, int32(2), got.TotalItems)

	require.NoError(t, cache.Delete(ctx, user))
	require.NoError(t, cache.Set(ctx, user, View{UserID: user, Version: 2}))
	_, err = cache.Get(ctx, user)
	require.ErrorIs(t, err, ErrCacheMiss, "version marker must survive Delete")

	require.NoError(t, cache.Set(ctx, user, View{UserID: user, TotalItems: 5, Version: 4}))
	got, err = cache.Get(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int32(5), got.TotalItems)
}

func TestServiceCacheWrittenThroughOnMutation(t *testing.T) {
	f := newFixture(t)
	cache, mr := newTestCache(t)
	f.svc.Cache = cache
	ctx := context.Background()

	v, err := f.svc.GetOrCreateCart(ctx, f.user)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey(f.user)))

	added, err := f.svc.AddItem(ctx, f.user, f.product, 1)
	require.NoError(t, err)

	cached, err := cache.Get(ctx, f.user)
	require.NoError(t, err)
	require.Equal(t, added.Version, cached.Version)
	require.Equal(t, int32(1), cached.TotalItems)

	fresh, err := f.svc.GetOrCreateCart(ctx, f.user)
	require.NoError(t, err)
	require.Equal(t, v.ID, fresh.ID)
	require.Equal(t, int32(1), fresh.TotalItems)
}

// gatedCache parks the first Set until release is closed.
type gatedCache struct {
	Cache
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func newGatedCache(inner Cache) *gatedCache {
	return &gatedCache{Cache: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedCache) Set(ctx context.Context, userID uuid.UUID, view View) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
		g.ctxErr = ctx.Err()
	}
	return g.Cache.Set(ctx, userID, view)
}

func TestServiceSlowReaderDoesNotOverwriteCommittedView(t *testing.T) {
	f := newFixture(t)
	inner, _ := newTestCache(t)
	gated := newGatedCache(inner)
	f.svc.Cache = gated
	ctx := context.Background()

	readerDone := make(chan error, 1)
	go func() {
		_, err := f.svc.GetOrCreateCart(ctx, f.user)
		readerDone <- err
	}()
	<-gated.entered

	added, err := f.svc.AddItem(ctx, f.user, f.product, 2)
	require.NoError(t, err)
	require.Equal(t, int32(2), added.TotalItems)

	close(gated.release)
	require.NoError(t, <-readerDone)

	got, err := f.svc.GetOrCreateCart(ctx, f.user)
	require.NoError(t, err)
	require.Equal(t, int32(2), got.TotalItems)
	require.True(t, got.Subtotal.Equal(pricing.MustParse("100000")), "subtotal %s", got.Subtotal)
}

func TestServiceSharedLoadSurvivesCallerCancel(t *testing.T) {
	f := newFixture(t)
	inner, _ := newTestCache(t)
	gated := newGatedCache(inner)
	f.svc.Cache = gated

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.GetOrCreateCart(ctx, f.user)
		done <- err
	}()
	<-gated.entered
	cancel()
	close(gated.release)

	require.NoError(t, <-done)
	require.NoError(t, gated.ctxErr)
	_, err := inner.Get(context.Background(), f.user)
	require.NoError(t, err, "view loaded for a cancelled caller should still be cached")
}

func TestServiceServesCachedView(t *testing.T) {
	f := newFixture(t)
	cache, _ := newTestCache(t)
	f.svc.Cache = cache
	ctx := context.Background()

	stale := View{ID: uuid.New(), UserID: f.user, TotalItems: 7}
	require.NoError(t, cache.Set(ctx, f.user, stale))

	got, err := f.svc.GetOrCreateCart(ctx, f.user)
	require.NoError(t, err)
	require.Equal(t, stale.ID, got.ID)
	require.Empty(t, f.store.q.carts, "cache hit must not touch the store")
}
