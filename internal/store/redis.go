package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"impostor/internal/domain"
)

const (
	roomKeyPrefix = "room:"
	lockKeyPrefix = "lock:room:"

	// DefaultLockTTL bounds how long a crashed holder can block a room
	DefaultLockTTL = 10 * time.Second

	lockRetryMin = 5 * time.Millisecond
	lockRetryMax = 100 * time.Millisecond
)

// releaseLock deletes the lock only while it still carries the caller's
// owner id, so an expired holder never frees someone else's lock.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps each room as a JSON string under "room:<CODE>" with a
// native key expiry. Room locks live under "lock:room:<CODE>" so several
// server processes can share one Redis.
type RedisStore struct {
	rdb     *redis.Client
	locks   *roomLocks
	lockTTL time.Duration
}

// NewRedisStore wraps an existing client
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, locks: newRoomLocks(), lockTTL: DefaultLockTTL}
}

func roomKey(code string) string {
	return roomKeyPrefix + domain.NormalizeCode(code)
}

func lockKey(code string) string {
	return lockKeyPrefix + domain.NormalizeCode(code)
}

// Load fetches and decodes the room stored under code
func (s *RedisStore) Load(ctx context.Context, code string) (*domain.Room, error) {
	data, err := s.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", code, err)
	}
	return decode(code, data)
}

// Save overwrites the room and resets its expiry to ttl
func (s *RedisStore) Save(ctx context.Context, room *domain.Room, ttl time.Duration) error {
	data, err := encode(room)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, roomKey(room.Code), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", room.Code, err)
	}
	return nil
}

// Create claims the room's code with SET NX and reports whether it won
func (s *RedisStore) Create(ctx context.Context, room *domain.Room, ttl time.Duration) (bool, error) {
	data, err := encode(room)
	if err != nil {
		return false, err
	}
	created, err := s.rdb.SetNX(ctx, roomKey(room.Code), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", room.Code, err)
	}
	return created, nil
}

// Delete removes the room; deleting an unknown code is not an error
func (s *RedisStore) Delete(ctx context.Context, code string) error {
	if err := s.rdb.Del(ctx, roomKey(code)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", code, err)
	}
	return nil
}

// Exists reports whether a room is stored under code
func (s *RedisStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", code, err)
	}
	return n > 0, nil
}

// Lock takes the room's lock with SET NX PX, polling until it is free or
// ctx is done. Callers in this process queue on a local mutex first so only
// one of them polls Redis at a time. The lock expires on its own after the
// lock TTL if its holder never releases it.
func (s *RedisStore) Lock(ctx context.Context, code string) (func(), error) {
	code = domain.NormalizeCode(code)
	unlockLocal := s.locks.lock(code)

	key := lockKey(code)
	owner := uuid.NewString()
	wait := lockRetryMin
	for {
		acquired, err := s.rdb.SetNX(ctx, key, owner, s.lockTTL).Result()
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("redis lock %s: %w", code, err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, fmt.Errorf("redis lock %s: %w", code, ctx.Err())
		case <-time.After(wait):
		}
		wait = min(wait*2, lockRetryMax)
	}

	return func() {
		// The command context may already be gone; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		// A failed release leaves the lock to expire.
		_ = releaseLock.Run(releaseCtx, s.rdb, []string{key}, owner).Err()
		unlockLocal()
	}, nil
}
