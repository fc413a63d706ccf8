package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// keyLocks provides exclusive logical locks addressed by string keys.
// Entries exist only while held or waited on, so the map does not grow
// with the number of rooms and occupants ever seen.
type keyLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{} // holds one token when the lock is free
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{entries: make(map[string]*lockEntry)}
}

func roomKey(id int64) string     { return fmt.Sprintf("room:%d", id) }
func occupantKey(id int64) string { return fmt.Sprintf("occupant:%d", id) }
func leaseKey(id int64) string    { return fmt.Sprintf("lease:%d", id) }

func (k *keyLocks) entry(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *keyLocks) put(key string, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// acquire takes every key's lock in lexicographic order, so operations with
// overlapping key sets can never deadlock each other. Each key waits at most
// until the deadline; on timeout every lock taken so far is released and
// ErrLockTimeout is returned. The release func must be called exactly once.
func (k *keyLocks) acquire(ctx context.Context, wait time.Duration, keys ...string) (release func(), err error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	deadline := time.NewTimer(wait)
	defer deadline.Stop()

	held := make([]string, 0, len(sorted))
	entries := make([]*lockEntry, 0, len(sorted))

	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			entries[i].ch <- struct{}{}
			k.put(held[i], entries[i])
		}
	}

	for _, key := range sorted {
		e := k.entry(key)
		select {
		case <-e.ch:
			held = append(held, key)
			entries = append(entries, e)
		case <-deadline.C:
			k.put(key, e)
			releaseHeld()
			return nil, ErrLockTimeout
		case <-ctx.Done():
			k.put(key, e)
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}
