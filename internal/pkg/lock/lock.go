// Package lock provides per-player locking so command handlers that
// read-modify-write player state cannot interleave.
package lock

import "sync"

// playerMutex wraps a mutex kept in the shared map.
type playerMutex struct {
	mu sync.Mutex
}

// PlayerLock hands out one mutex per player id.
type PlayerLock struct {
	locks sync.Map // map[int64]*playerMutex
	pool  sync.Pool
}

// NewPlayerLock creates a new PlayerLock instance.
func NewPlayerLock() *PlayerLock {
	return &PlayerLock{
		pool: sync.Pool{
			New: func() any {
				return &playerMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given player ID.
func (pl *PlayerLock) getLock(playerID int64) *playerMutex {
	if v, ok := pl.locks.Load(playerID); ok {
		return v.(*playerMutex)
	}

	newLock := pl.pool.Get().(*playerMutex)
	actual, loaded := pl.locks.LoadOrStore(playerID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		pl.pool.Put(newLock)
	}
	return actual.(*playerMutex)
}

// Lock acquires the lock for a player.
func (pl *PlayerLock) Lock(playerID int64) {
	pl.getLock(playerID).mu.Lock()
}

// Unlock releases the lock for a player.
func (pl *PlayerLock) Unlock(playerID int64) {
	if v, ok := pl.locks.Load(playerID); ok {
		v.(*playerMutex).mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (pl *PlayerLock) TryLock(playerID int64) bool {
	return pl.getLock(playerID).mu.TryLock()
}
