package classotp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func stores() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
	}
}

func session(id, code string, issued time.Time) Session {
	return Session{ID: id, Code: code, IssuedAt: issued, ExpiresAt: issued.Add(30 * time.Minute)}
}

func TestStoreCreateIfAbsent(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			cur, err := s.Current(ctx)
			require.NoError(t, err)
			assert.Nil(t, cur)

			got, created, err := s.CreateIfAbsent(ctx, session("a", "482913", at(10, 0)), at(10, 0))
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, "a", got.ID)
			assert.Equal(t, "482913", got.Code)
			assert.True(t, got.ExpiresAt.Equal(at(10, 30)))

			got, created, err = s.CreateIfAbsent(ctx, session("b", "771045", at(10, 5)), at(10, 5))
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, "a", got.ID)
			assert.Equal(t, "482913", got.Code)

			got, created, err = s.CreateIfAbsent(ctx, session("c", "771045", at(10, 30)), at(10, 30))
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, "c", got.ID)
			assert.Equal(t, 0, got.TotalUses)
		})
	}
}

func TestStoreReserveRelease(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			_, _, err := s.CreateIfAbsent(ctx, session("a", "482913", at(10, 0)), at(10, 0))
			require.NoError(t, err)

			ok, err := s.Reserve(ctx, "a", "24UCSE001")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.Reserve(ctx, "a", "24UCSE001")
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = s.Reserve(ctx, "a", "24UCSE002")
			require.NoError(t, err)
			assert.True(t, ok)

			n, err := s.Uses(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, s.Release(ctx, "a", "24UCSE002"))
			cur, err := s.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, cur.TotalUses)

			_, err = s.Reserve(ctx, "stale", "24UCSE003")
			assert.ErrorIs(t, err, errSessionReplaced)
		})
	}
}

func TestStoreInvalidate(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			_, _, err := s.CreateIfAbsent(ctx, session("a", "482913", at(10, 0)), at(10, 0))
			require.NoError(t, err)

			require.NoError(t, s.Invalidate(ctx, "other"))
			cur, err := s.Current(ctx)
			require.NoError(t, err)
			require.NotNil(t, cur)

			require.NoError(t, s.Invalidate(ctx, "a"))
			cur, err = s.Current(ctx)
			require.NoError(t, err)
			assert.Nil(t, cur)
		})
	}
}

func TestStoreReplacementResetsUses(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			_, _, err := s.CreateIfAbsent(ctx, session("a", "482913", at(10, 0)), at(10, 0))
			require.NoError(t, err)
			_, err = s.Reserve(ctx, "a", "24UCSE001")
			require.NoError(t, err)

			_, created, err := s.CreateIfAbsent(ctx, session("b", "771045", at(10, 31)), at(10, 31))
			require.NoError(t, err)
			require.True(t, created)

			ok, err := s.Reserve(ctx, "b", "24UCSE001")
			require.NoError(t, err)
			assert.True(t, ok)

			_, err = s.Reserve(ctx, "a", "24UCSE002")
			assert.ErrorIs(t, err, errSessionReplaced)
		})
	}
}

func TestStoreConcurrentReserve(t *testing.T) {
	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()
			_, _, err := s.CreateIfAbsent(ctx, session("a", "482913", at(10, 0)), at(10, 0))
			require.NoError(t, err)

			const n = 16
			var (
				wg  sync.WaitGroup
				mu  sync.Mutex
				won int
			)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := s.Reserve(ctx, "a", "24UCSE001")
					if assert.NoError(t, err) && ok {
						mu.Lock()
						won++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, won)
		})
	}
}

func TestRedisStoreKeepsExpiredSessionForRetention(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()
	_, _, err := s.CreateIfAbsent(ctx, session("a", "482913", now), now)
	require.NoError(t, err)

	ttl := mr.TTL(sessionKey)
	assert.InDelta(t, (30*time.Minute + time.Hour).Seconds(), ttl.Seconds(), 2)

	_, err = s.Reserve(ctx, "a", "24UCSE001")
	require.NoError(t, err)
	assert.True(t, mr.TTL(usedKey("a")) > 0)

	mr.FastForward(31*time.Minute + time.Hour)
	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestRedisStoreDefaultsNonPositiveRetention(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, 0)

	now := time.Now()
	_, _, err := s.CreateIfAbsent(context.Background(), session("a", "482913", now), now)
	require.NoError(t, err)
	assert.InDelta(t, (30*time.Minute + DefaultRetention).Seconds(), mr.TTL(sessionKey).Seconds(), 2)
}
