package storage

import "sync"

// ScopeLocks serializes read-modify-write sequences for one client scope
// within this process.
type ScopeLocks struct {
	mu    sync.Mutex
	locks map[string]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until scope is free and returns the matching unlock func.
func (l *ScopeLocks) Lock(scope string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*scopeLock{}
	}
	sl, ok := l.locks[scope]
	if !ok {
		sl = &scopeLock{}
		l.locks[scope] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, scope)
		}
		l.mu.Unlock()
	}
}
