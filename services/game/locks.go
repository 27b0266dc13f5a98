package game

import "sync"

// keyedLocks serializes all state-mutating operations on one game id.
// Every service operation acquires the game's lock before reading the
// aggregate, so completion checks and score computation always observe a
// consistent, final view of the round's submissions.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (kl *keyedLocks) lock(key string) func() {
	kl.mu.Lock()
	l, ok := kl.locks[key]
	if !ok {
		l = &sync.Mutex{}
		kl.locks[key] = l
	}
	kl.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the lock entry for a finished game. Safe to call while
// other goroutines still hold the old mutex; they finish on their copy.
func (kl *keyedLocks) forget(key string) {
	kl.mu.Lock()
	delete(kl.locks, key)
	kl.mu.Unlock()
}
