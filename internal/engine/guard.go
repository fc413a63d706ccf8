package engine

import (
	"time"

	"hostel-allocation-backend/internal/model"
)

// The invariant guard decides, from a snapshot of the records involved,
// whether a transition is legal, and computes the exact post-state to
// commit. All functions here are pure: they never touch the store and they
// never mutate their inputs.

// createDelta is the post-state of a successful lease creation.
type createDelta struct {
	lease    *model.Lease
	room     *model.Room
	occupant *model.Occupant
}

func prepareCreate(occupant *model.Occupant, room *model.Room, notes string, now time.Time) (*createDelta, error) {
	if occupant == nil {
		return nil, ErrOccupantNotFound
	}
	if occupant.CurrentLeaseID != nil {
		return nil, ErrOccupantAlreadyAllocated
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if room.CurrentOccupancy >= room.Capacity {
		return nil, ErrRoomAtCapacity
	}

	newRoom := *room
	newRoom.CurrentOccupancy++
	newRoom.Status = model.DeriveRoomStatus(newRoom.CurrentOccupancy, newRoom.Capacity, newRoom.UnderMaintenance)

	newOccupant := *occupant
	newOccupant.RoomID = &room.ID
	// CurrentLeaseID is filled in by the store once the lease row exists.

	lease := &model.Lease{
		OccupantID: occupant.ID,
		RoomID:     room.ID,
		StartedAt:  now,
		Status:     model.LeaseActive,
		Notes:      notes,
	}

	return &createDelta{lease: lease, room: &newRoom, occupant: &newOccupant}, nil
}

// completeDelta is the post-state of a successful lease completion. Room and
// occupant are nil when the counterpart record was deleted out-of-band, in
// which case completion proceeds without touching it.
type completeDelta struct {
	lease    *model.Lease
	room     *model.Room
	occupant *model.Occupant
}

func prepareComplete(lease *model.Lease, room *model.Room, occupant *model.Occupant, now time.Time) (*completeDelta, error) {
	if lease == nil {
		return nil, ErrLeaseNotFound
	}
	if lease.Status != model.LeaseActive {
		return nil, ErrLeaseAlreadyCompleted
	}

	newLease := *lease
	newLease.Status = model.LeaseCompleted
	newLease.CompletedAt = &now

	delta := &completeDelta{lease: &newLease}

	if room != nil {
		newRoom := *room
		// Clamp at zero: the room may have been edited out-of-band.
		if newRoom.CurrentOccupancy > 0 {
			newRoom.CurrentOccupancy--
		}
		newRoom.Status = model.DeriveRoomStatus(newRoom.CurrentOccupancy, newRoom.Capacity, newRoom.UnderMaintenance)
		delta.room = &newRoom
	}

	if occupant != nil {
		newOccupant := *occupant
		newOccupant.RoomID = nil
		newOccupant.CurrentLeaseID = nil
		delta.occupant = &newOccupant
	}

	return delta, nil
}

func prepareDeleteLease(lease *model.Lease) error {
	if lease == nil {
		return ErrLeaseNotFound
	}
	if lease.Status == model.LeaseActive {
		return ErrCannotDeleteActiveLease
	}
	return nil
}

func prepareDeleteRoom(room *model.Room) error {
	if room == nil {
		return ErrRoomNotFound
	}
	if room.CurrentOccupancy > 0 {
		return ErrRoomNotEmpty
	}
	return nil
}

func prepareDeleteOccupant(occupant *model.Occupant) error {
	if occupant == nil {
		return ErrOccupantNotFound
	}
	if occupant.CurrentLeaseID != nil {
		return ErrOccupantHasActiveLease
	}
	return nil
}
