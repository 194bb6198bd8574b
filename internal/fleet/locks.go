package fleet

import "sync"

// vinLocks serializes work on the same vehicle while letting different
// vehicles proceed in parallel. Entries are dropped once nobody holds or
// waits on them.
type vinLocks struct {
	mu    sync.Mutex
	locks map[string]*vinLock
}

type vinLock struct {
	sync.Mutex
	refs int
}

// lock blocks until the caller owns vin and returns the matching unlock.
func (l *vinLocks) lock(vin string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*vinLock)
	}
	entry, ok := l.locks[vin]
	if !ok {
		entry = &vinLock{}
		l.locks[vin] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, vin)
		}
		l.mu.Unlock()
	}
}

func (l *vinLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
