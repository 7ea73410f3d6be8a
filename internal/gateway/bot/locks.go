package bot

import "sync"

// lockTable hands out one mutex per session id, so events of the same
// dialogue are processed one at a time while sessions stay independent.
// Entries are reference counted and dropped when the last holder
// unlocks, an idle session costs nothing.
type lockTable struct {
	mu    *sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() lockTable {
	return lockTable{
		mu:    &sync.Mutex{},
		locks: make(map[string]*sessionLock),
	}
}

func (t lockTable) lock(key string) (unlock func()) {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &sessionLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, key)
		}
		t.mu.Unlock()
	}
}
