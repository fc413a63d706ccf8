package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// ErrVersionConflict means a version-checked write found the record changed
// since it was read. The logical key locks make this unreachable in normal
// operation; it exists as defense in depth beneath them.
var ErrVersionConflict = errors.New("record changed since it was read")

// Store defines the record storage the allocation engine and the handlers
// require: point reads, atomic multi-record commits for the lease
// lifecycle, guarded deletes and the occupancy aggregate.
type Store interface {
	DB() *gorm.DB

	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	GetOccupant(ctx context.Context, id int64) (*model.Occupant, error)
	GetLease(ctx context.Context, id int64) (*model.Lease, error)

	CommitLeaseCreate(ctx context.Context, lease *model.Lease, room *model.Room, occupant *model.Occupant) error
	CommitLeaseComplete(ctx context.Context, lease *model.Lease, room *model.Room, occupant *model.Occupant) error

	DeleteLease(ctx context.Context, id int64) error
	DeleteRoom(ctx context.Context, id int64) error
	DeleteOccupant(ctx context.Context, id int64) error

	OccupancySummary(ctx context.Context) (*OccupancySummary, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Point reads return (nil, nil) when the record does not exist; the engine
// owns the translation into its not-found taxonomy.

func (s *gormStore) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read room %d: %w", id, err)
	}
	return &room, nil
}

func (s *gormStore) GetOccupant(ctx context.Context, id int64) (*model.Occupant, error) {
	var occupant model.Occupant
	if err := s.db.WithContext(ctx).First(&occupant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read occupant %d: %w", id, err)
	}
	return &occupant, nil
}

func (s *gormStore) GetLease(ctx context.Context, id int64) (*model.Lease, error) {
	var lease model.Lease
	if err := s.db.WithContext(ctx).First(&lease, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lease %d: %w", id, err)
	}
	return &lease, nil
}

// CommitLeaseCreate inserts the new lease and applies the room and occupant
// deltas in one transaction. Every update is version-checked; a conflict
// rolls the whole commit back. On success the passed-in snapshots are
// updated in place (lease ID, occupant back-reference, bumped versions) so
// the caller can return them as post-commit state.
func (s *gormStore) CommitLeaseCreate(ctx context.Context, lease *model.Lease, room *model.Room, occupant *model.Occupant) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lease).Error; err != nil {
			return fmt.Errorf("failed to create lease: %w", err)
		}

		if err := updateRoomChecked(tx, room); err != nil {
			return err
		}

		occupant.CurrentLeaseID = &lease.ID
		if err := updateOccupantChecked(tx, occupant); err != nil {
			return err
		}
		return nil
	})
}

// CommitLeaseComplete applies the completion deltas in one transaction.
// Room and occupant may be nil when the counterpart record was deleted
// out-of-band; the lease still completes.
func (s *gormStore) CommitLeaseComplete(ctx context.Context, lease *model.Lease, room *model.Room, occupant *model.Occupant) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Lease{}).
			Where("id = ? AND version = ?", lease.ID, lease.Version).
			Updates(map[string]any{
				"status":       lease.Status,
				"completed_at": lease.CompletedAt,
				"version":      lease.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete lease %d: %w", lease.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		lease.Version++

		if room != nil {
			if err := updateRoomChecked(tx, room); err != nil {
				return err
			}
		}
		if occupant != nil {
			if err := updateOccupantChecked(tx, occupant); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateRoomChecked(tx *gorm.DB, room *model.Room) error {
	res := tx.Model(&model.Room{}).
		Where("id = ? AND version = ?", room.ID, room.Version).
		Updates(map[string]any{
			"current_occupancy": room.CurrentOccupancy,
			"status":            room.Status,
			"version":           room.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update room %d: %w", room.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	room.Version++
	return nil
}

func updateOccupantChecked(tx *gorm.DB, occupant *model.Occupant) error {
	res := tx.Model(&model.Occupant{}).
		Where("id = ? AND version = ?", occupant.ID, occupant.Version).
		Updates(map[string]any{
			"room_id":          occupant.RoomID,
			"current_lease_id": occupant.CurrentLeaseID,
			"version":          occupant.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update occupant %d: %w", occupant.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	occupant.Version++
	return nil
}

func (s *gormStore) DeleteLease(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Lease{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete lease %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Room{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete room %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) DeleteOccupant(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Occupant{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete occupant %d: %w", id, err)
	}
	return nil
}

// OccupancySummary aggregates the room table in two queries: status counts
// and capacity/occupancy sums.
func (s *gormStore) OccupancySummary(ctx context.Context) (*OccupancySummary, error) {
	type statusRow struct {
		Status model.RoomStatus
		N      int64
	}
	var statuses []statusRow
	if err := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Select("status as status, COUNT(*) as n").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate room statuses: %w", err)
	}

	type sumRow struct {
		TotalRooms    int64
		TotalCapacity int64
		TotalOccupied int64
	}
	var sums sumRow
	if err := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Select("COUNT(*) as total_rooms, COALESCE(SUM(capacity), 0) as total_capacity, COALESCE(SUM(current_occupancy), 0) as total_occupied").
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate room capacity: %w", err)
	}

	summary := &OccupancySummary{
		TotalRooms:    sums.TotalRooms,
		TotalCapacity: sums.TotalCapacity,
		TotalOccupied: sums.TotalOccupied,
	}
	summary.AvailableSlots = summary.TotalCapacity - summary.TotalOccupied
	for _, row := range statuses {
		switch row.Status {
		case model.RoomAvailable:
			summary.Available = row.N
		case model.RoomOccupied:
			summary.Occupied = row.N
		case model.RoomMaintenance:
			summary.UnderMaintenance = row.N
		}
	}
	return summary, nil
}
