package store

import "sync"

// roomLocks serializes commands per room code. Entries are reference
// counted and dropped once no command holds or waits on them.
type roomLocks struct {
	mu    sync.Mutex
	rooms map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: make(map[string]*roomLock)}
}

// lock blocks until code is free and returns the matching unlock
func (l *roomLocks) lock(code string) func() {
	l.mu.Lock()
	rl, ok := l.rooms[code]
	if !ok {
		rl = &roomLock{}
		l.rooms[code] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()

	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.rooms, code)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}
