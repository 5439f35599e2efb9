// Package lock serializes check-then-act sequences that span several documents.
// Callers lock every key they are about to read and write; keys are acquired in
// sorted order so two callers locking the same set can never deadlock.
package lock

import (
	"context"
	"sort"
	"sync"
)

// Locker acquires exclusive ownership of a set of keys. The returned release
// function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (release func(), err error)
}

// sortedKeys returns the distinct keys in ascending order.
func sortedKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Local is an in-process keyed mutex. It only protects callers inside one
// process; use Redis when several replicas share the database.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{} // buffered(1); holding the token means holding the lock
	refs int
}

// NewLocal returns an empty Local locker.
func NewLocal() *Local {
	return &Local{locks: map[string]*entry{}}
}

// Lock blocks until every key is held or ctx is done.
func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = sortedKeys(keys)
	held := make([]string, 0, len(keys))

	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}

	for _, k := range keys {
		e := l.acquireEntry(k)
		select {
		case e.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			l.dropEntry(k)
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func (l *Local) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Local) dropEntry(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Local) unlock(key string) {
	l.mu.Lock()
	e := l.locks[key]
	l.mu.Unlock()
	<-e.ch
	l.dropEntry(key)
}
