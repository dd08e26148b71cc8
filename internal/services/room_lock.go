package services

import (
	"sync"

	"github.com/google/uuid"
)

// roomLocks hands out one mutex per room id. Entries are dropped once the
// last holder or waiter leaves so the map does not grow with the catalogue.
type roomLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[uuid.UUID]*roomLock)}
}

// lock blocks until the caller holds the room and returns the unlock func
func (l *roomLocks) lock(roomID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[roomID]
	if !ok {
		entry = &roomLock{}
		l.locks[roomID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
