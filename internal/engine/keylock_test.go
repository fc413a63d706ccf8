package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLocksExclusion(t *testing.T) {
	locks := newKeyLocks()
	ctx := context.Background()

	release, err := locks.acquire(ctx, time.Second, "room:1")
	require.NoError(t, err)

	_, err = locks.acquire(ctx, 50*time.Millisecond, "room:1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()

	release2, err := locks.acquire(ctx, time.Second, "room:1")
	require.NoError(t, err)
	release2()
}

func TestKeyLocksDisjointKeysDoNotBlock(t *testing.T) {
	locks := newKeyLocks()
	ctx := context.Background()

	release1, err := locks.acquire(ctx, time.Second, "room:1")
	require.NoError(t, err)
	defer release1()

	release2, err := locks.acquire(ctx, 50*time.Millisecond, "room:2", "occupant:5")
	require.NoError(t, err)
	release2()
}

func TestKeyLocksTimeoutReleasesPartialHold(t *testing.T) {
	locks := newKeyLocks()
	ctx := context.Background()

	// Hold room:2; an acquire for {room:1, room:2} times out on room:2 and
	// must not leave room:1 held.
	release, err := locks.acquire(ctx, time.Second, "room:2")
	require.NoError(t, err)

	_, err = locks.acquire(ctx, 50*time.Millisecond, "room:1", "room:2")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release1, err := locks.acquire(ctx, 50*time.Millisecond, "room:1")
	require.NoError(t, err)
	release1()

	release()
}

func TestKeyLocksContextCancel(t *testing.T) {
	locks := newKeyLocks()

	release, err := locks.acquire(context.Background(), time.Second, "lease:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locks.acquire(ctx, time.Second, "lease:1")
	assert.ErrorIs(t, err, context.Canceled)
}

// Overlapping key sets acquired in opposite declaration order must never
// deadlock: acquisition sorts keys into a total order.
func TestKeyLocksNoDeadlockOnOverlappingSets(t *testing.T) {
	locks := newKeyLocks()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := locks.acquire(ctx, 5*time.Second, "occupant:1", "room:1")
			if assert.NoError(t, err) {
				release()
			}
		}()
		go func() {
			defer wg.Done()
			release, err := locks.acquire(ctx, 5*time.Second, "room:1", "occupant:1")
			if assert.NoError(t, err) {
				release()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("lock acquisitions deadlocked")
	}
}

func TestKeyLocksEntriesAreReclaimed(t *testing.T) {
	locks := newKeyLocks()
	release, err := locks.acquire(context.Background(), time.Second, "room:1", "occupant:2")
	require.NoError(t, err)
	release()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.entries)
}
