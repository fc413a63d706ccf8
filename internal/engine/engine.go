package engine

import (
	"context"
	"time"

	"hostel-allocation-backend/internal/event"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

// Engine owns the allocation invariants. Every mutation of the
// occupant/room/lease triple goes through here: the serialization layer
// takes the logical key locks, the invariant guard validates and computes
// the post-state, the store commits it atomically, and the committed
// transition is published to the bus. Reads never lock.
type Engine struct {
	store    store.Store
	bus      event.Bus
	locks    *keyLocks
	lockWait time.Duration
	now      func() time.Time
}

// New creates an engine. lockWait bounds how long a mutation waits for the
// key locks before failing with ErrLockTimeout.
func New(s store.Store, bus event.Bus, lockWait time.Duration) *Engine {
	if lockWait <= 0 {
		lockWait = 2 * time.Second
	}
	return &Engine{
		store:    s,
		bus:      bus,
		locks:    newKeyLocks(),
		lockWait: lockWait,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateLease allocates the occupant to the room. On success the returned
// lease is Active and carries the post-commit room and occupant snapshots.
func (e *Engine) CreateLease(ctx context.Context, occupantID, roomID int64, notes string) (*model.Lease, error) {
	release, err := e.locks.acquire(ctx, e.lockWait, occupantKey(occupantID), roomKey(roomID))
	if err != nil {
		return nil, err
	}
	defer release()

	occupant, err := e.store.GetOccupant(ctx, occupantID)
	if err != nil {
		return nil, err
	}
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	delta, err := prepareCreate(occupant, room, notes, e.now())
	if err != nil {
		return nil, err
	}

	if err := e.store.CommitLeaseCreate(ctx, delta.lease, delta.room, delta.occupant); err != nil {
		return nil, err
	}

	e.publish(event.Event{
		Type:     event.LeaseCreated,
		At:       e.now(),
		ID:       delta.lease.ID,
		Lease:    delta.lease,
		Room:     delta.room,
		Occupant: delta.occupant,
	})

	result := *delta.lease
	result.Room = delta.room
	result.Occupant = delta.occupant
	return &result, nil
}

// CompleteLease ends an active lease, freeing the occupant and the room
// slot. A room or occupant deleted out-of-band is skipped; the lease still
// completes.
func (e *Engine) CompleteLease(ctx context.Context, leaseID int64) (*model.Lease, error) {
	// Unlocked peek to learn which room and occupant keys to lock.
	peek, err := e.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, ErrLeaseNotFound
	}

	release, err := e.locks.acquire(ctx, e.lockWait,
		leaseKey(leaseID), roomKey(peek.RoomID), occupantKey(peek.OccupantID))
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the locks and re-validate.
	lease, err := e.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	var room *model.Room
	var occupant *model.Occupant
	if lease != nil {
		if room, err = e.store.GetRoom(ctx, lease.RoomID); err != nil {
			return nil, err
		}
		if occupant, err = e.store.GetOccupant(ctx, lease.OccupantID); err != nil {
			return nil, err
		}
	}

	delta, err := prepareComplete(lease, room, occupant, e.now())
	if err != nil {
		return nil, err
	}

	if err := e.store.CommitLeaseComplete(ctx, delta.lease, delta.room, delta.occupant); err != nil {
		return nil, err
	}

	e.publish(event.Event{
		Type:     event.LeaseCompleted,
		At:       e.now(),
		ID:       delta.lease.ID,
		Lease:    delta.lease,
		Room:     delta.room,
		Occupant: delta.occupant,
	})

	result := *delta.lease
	result.Room = delta.room
	result.Occupant = delta.occupant
	return &result, nil
}

// DeleteLease removes a completed lease record.
func (e *Engine) DeleteLease(ctx context.Context, leaseID int64) error {
	release, err := e.locks.acquire(ctx, e.lockWait, leaseKey(leaseID))
	if err != nil {
		return err
	}
	defer release()

	lease, err := e.store.GetLease(ctx, leaseID)
	if err != nil {
		return err
	}
	if err := prepareDeleteLease(lease); err != nil {
		return err
	}
	if err := e.store.DeleteLease(ctx, leaseID); err != nil {
		return err
	}

	e.publish(event.Event{Type: event.LeaseDeleted, At: e.now(), ID: leaseID})
	return nil
}

// DeleteRoom removes an empty room.
func (e *Engine) DeleteRoom(ctx context.Context, roomID int64) error {
	release, err := e.locks.acquire(ctx, e.lockWait, roomKey(roomID))
	if err != nil {
		return err
	}
	defer release()

	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if err := prepareDeleteRoom(room); err != nil {
		return err
	}
	if err := e.store.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	e.publish(event.Event{Type: event.RoomDeleted, At: e.now(), ID: roomID})
	return nil
}

// DeleteOccupant removes an occupant with no active lease.
func (e *Engine) DeleteOccupant(ctx context.Context, occupantID int64) error {
	release, err := e.locks.acquire(ctx, e.lockWait, occupantKey(occupantID))
	if err != nil {
		return err
	}
	defer release()

	occupant, err := e.store.GetOccupant(ctx, occupantID)
	if err != nil {
		return err
	}
	if err := prepareDeleteOccupant(occupant); err != nil {
		return err
	}
	if err := e.store.DeleteOccupant(ctx, occupantID); err != nil {
		return err
	}

	e.publish(event.Event{Type: event.OccupantDeleted, At: e.now(), ID: occupantID})
	return nil
}

// OccupancySummary reads the aggregate room view. No locking: summaries may
// observe a slightly stale snapshot.
func (e *Engine) OccupancySummary(ctx context.Context) (*store.OccupancySummary, error) {
	return e.store.OccupancySummary(ctx)
}

// publish is best effort: events happen strictly after commit and a failed
// or absent bus never rolls a commit back.
func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
