package engine

import (
	"errors"

	"hostel-allocation-backend/internal/store"
)

// Not-found errors: the referenced record does not exist. Never retried.
var (
	ErrOccupantNotFound = errors.New("occupant not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrLeaseNotFound    = errors.New("lease not found")
)

// Invariant violations: the request is legal to make but illegal to commit.
// The operation is rejected with no partial writes.
var (
	ErrOccupantAlreadyAllocated = errors.New("occupant already has an active lease")
	ErrRoomAtCapacity           = errors.New("room is at full capacity")
	ErrLeaseAlreadyCompleted    = errors.New("lease already completed")
	ErrCannotDeleteActiveLease  = errors.New("cannot delete an active lease, complete it first")
	ErrRoomNotEmpty             = errors.New("cannot delete a room with occupants")
	ErrOccupantHasActiveLease   = errors.New("cannot delete an occupant with an active lease")
)

// ErrLockTimeout is returned when a key lock cannot be acquired within the
// configured wait. Retryable by the caller.
var ErrLockTimeout = errors.New("timed out waiting for allocation lock")

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOccupantNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrLeaseNotFound)
}

// IsConflict reports whether err is an invariant violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOccupantAlreadyAllocated) ||
		errors.Is(err, ErrRoomAtCapacity) ||
		errors.Is(err, ErrLeaseAlreadyCompleted) ||
		errors.Is(err, ErrCannotDeleteActiveLease) ||
		errors.Is(err, ErrRoomNotEmpty) ||
		errors.Is(err, ErrOccupantHasActiveLease)
}

// IsRetryable reports whether the caller may retry the whole operation.
// Covers lock contention and the store's version-check conflicts; a retried
// CreateLease cannot double-allocate because the already-allocated check is
// part of the same serialized operation on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, store.ErrVersionConflict)
}
