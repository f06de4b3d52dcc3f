package syncer

import "sync"

// keyLocks hands out one mutex per key so transitions for the same
// (punishment, target guild) serialize without a global critical
// section. Entries are reference counted and dropped when idle.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLockEntry)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *keyLocks) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func confirmKey(punishmentID, targetGuildID string) string {
	return punishmentID + "/" + targetGuildID
}
