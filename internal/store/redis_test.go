package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/domain"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	room := newRoom("ABCD")
	room.Players[0].Disconnect(epoch)

	require.NoError(t, s.Save(ctx, room, 2*time.Hour))

	assert.True(t, mr.Exists("room:ABCD"))
	assert.Equal(t, 2*time.Hour, mr.TTL("room:ABCD"))

	got, err := s.Load(ctx, "abcd")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.Players[0].Token)
	assert.False(t, got.Players[0].Connected)
	require.NotNil(t, got.Players[0].DisconnectedAt)
	assert.True(t, epoch.Equal(*got.Players[0].DisconnectedAt))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	require.NoError(t, s.Save(ctx, newRoom("ABCD"), 10*time.Minute))

	mr.FastForward(10 * time.Minute)

	_, err := s.Load(ctx, "ABCD")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	ok, err := s.Exists(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)
	require.NoError(t, s.Save(ctx, newRoom("ABCD"), time.Hour))

	require.NoError(t, s.Delete(ctx, "ABCD"))

	ok, err := s.Exists(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Load(ctx, "ABCD")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRedisStore_CreateUsesSetNX(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	created, err := s.Create(ctx, newRoom("ABCD"), 2*time.Hour)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2*time.Hour, mr.TTL("room:ABCD"))

	other := newRoom("ABCD")
	other.Players[0].Name = "Bea"
	created, err = s.Create(ctx, other, 2*time.Hour)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := s.Load(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Players[0].Name)
}

// sharedStores returns two stores over one Redis, as two server processes
// would have.
func sharedStores(t *testing.T) (*RedisStore, *RedisStore, *miniredis.Miniredis) {
	t.Helper()
	a, mr := newRedisStore(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return a, NewRedisStore(rdb), mr
}

func TestRedisStore_LockExcludesOtherProcesses(t *testing.T) {
	ctx := context.Background()
	a, b, mr := sharedStores(t)

	unlock, err := a.Lock(ctx, "abcd")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:room:ABCD"))
	assert.Equal(t, DefaultLockTTL, mr.TTL("lock:room:ABCD"))

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = b.Lock(waitCtx, "ABCD")
	require.Error(t, err)

	unlock()
	assert.False(t, mr.Exists("lock:room:ABCD"))

	unlockB, err := b.Lock(ctx, "ABCD")
	require.NoError(t, err)
	unlockB()
	assert.Zero(t, a.locks.len())
	assert.Zero(t, b.locks.len())
}

func TestRedisStore_UnlockKeepsForeignLock(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	unlock, err := s.Lock(ctx, "ABCD")
	require.NoError(t, err)

	// The lock expired and another process took it.
	require.NoError(t, mr.Set("lock:room:ABCD", "someone-else"))
	unlock()

	got, err := mr.Get("lock:room:ABCD")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisStore_LockExpiresWhenHolderVanishes(t *testing.T) {
	ctx := context.Background()
	a, b, mr := sharedStores(t)

	_, err := a.Lock(ctx, "ABCD")
	require.NoError(t, err)

	mr.FastForward(DefaultLockTTL)

	unlock, err := b.Lock(ctx, "ABCD")
	require.NoError(t, err)
	unlock()
}
