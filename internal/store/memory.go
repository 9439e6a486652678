package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"impostor/internal/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps serialized rooms in process memory. Callers always get
// a fresh copy, so a command that fails halfway never leaks into the
// stored state.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]memoryEntry
	locks *roomLocks
	now   func() time.Time
	cron  *cron.Cron
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]memoryEntry),
		locks: newRoomLocks(),
		now:   time.Now,
	}
}

// Load returns a copy of the stored room
func (s *MemoryStore) Load(_ context.Context, code string) (*domain.Room, error) {
	code = domain.NormalizeCode(code)

	s.mu.RLock()
	entry, ok := s.rooms[code]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, domain.ErrRoomNotFound
	}
	return decode(code, entry.data)
}

// Save stores a snapshot of room that expires after ttl
func (s *MemoryStore) Save(_ context.Context, room *domain.Room, ttl time.Duration) error {
	data, err := encode(room)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rooms[domain.NormalizeCode(room.Code)] = memoryEntry{data: data, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Create stores room unless an unexpired room already holds its code
func (s *MemoryStore) Create(_ context.Context, room *domain.Room, ttl time.Duration) (bool, error) {
	data, err := encode(room)
	if err != nil {
		return false, err
	}

	code := domain.NormalizeCode(room.Code)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.rooms[code]; ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	s.rooms[code] = memoryEntry{data: data, expiresAt: now.Add(ttl)}
	return true, nil
}

// Lock blocks until no other caller holds code. A memory store lives in one
// process, so an in-process mutex is enough.
func (s *MemoryStore) Lock(_ context.Context, code string) (func(), error) {
	return s.locks.lock(domain.NormalizeCode(code)), nil
}

// Delete removes a room; deleting an unknown code is not an error
func (s *MemoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	delete(s.rooms, domain.NormalizeCode(code))
	s.mu.Unlock()
	return nil
}

// Exists reports whether an unexpired room is stored under code
func (s *MemoryStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.rooms[domain.NormalizeCode(code)]
	s.mu.RUnlock()
	return ok && s.now().Before(entry.expiresAt), nil
}

// Len returns the number of stored rooms, expired or not
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Sweep drops expired rooms and returns how many were removed
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, entry := range s.rooms {
		if !now.Before(entry.expiresAt) {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}

// StartJanitor runs Sweep on a cron schedule such as "@every 1m"
func (s *MemoryStore) StartJanitor(schedule string, logger *slog.Logger) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			logger.Info("swept expired rooms", "count", n, "remaining", s.Len())
		}
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	return nil
}

// Stop halts the janitor, if running
func (s *MemoryStore) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
