package room

import "sync"

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// roomLocker serializes work per room code. Entries are dropped once no
// goroutine holds or waits on them.
type roomLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

func newRoomLocker() *roomLocker {
	return &roomLocker{locks: make(map[string]*refMutex)}
}

func (l *roomLocker) Lock(code string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[code]
	if !ok {
		m = &refMutex{}
		l.locks[code] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()

	return func() {
		m.mu.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, code)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocker) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
