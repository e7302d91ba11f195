package usecase

import "sync"

// keyedMutex serializes work per game id. Entries are dropped once nobody holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*refMutex),
	}
}

func (that *keyedMutex) Lock(key string) func() {
	that.mu.Lock()
	m, ok := that.locks[key]
	if !ok {
		m = &refMutex{}
		that.locks[key] = m
	}
	m.refs++
	that.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		that.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}
