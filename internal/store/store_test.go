package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.Room{}, &model.Occupant{}, &model.Lease{}))

	return NewGormStore(testDB), testDB
}

func TestGetReturnsNilForMissingRecords(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	room, err := s.GetRoom(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, room)

	occupant, err := s.GetOccupant(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, occupant)

	lease, err := s.GetLease(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, lease)
}

func TestCommitLeaseCreate(t *testing.T) {
	s, testDB := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{RoomNumber: "A-101", Capacity: 2, Status: model.RoomAvailable}
	occupant := &model.Occupant{Name: "alice", ExternalID: "s1", Email: "alice@example.com"}
	require.NoError(t, testDB.Create(room).Error)
	require.NoError(t, testDB.Create(occupant).Error)

	lease := &model.Lease{
		OccupantID: occupant.ID,
		RoomID:     room.ID,
		StartedAt:  time.Now().UTC(),
		Status:     model.LeaseActive,
	}
	room.CurrentOccupancy = 1
	occupant.RoomID = &room.ID

	require.NoError(t, s.CommitLeaseCreate(ctx, lease, room, occupant))
	assert.NotZero(t, lease.ID)
	assert.Equal(t, int64(1), room.Version)
	assert.Equal(t, int64(1), occupant.Version)

	var persistedRoom model.Room
	require.NoError(t, testDB.First(&persistedRoom, room.ID).Error)
	assert.Equal(t, 1, persistedRoom.CurrentOccupancy)
	assert.Equal(t, int64(1), persistedRoom.Version)

	var persistedOccupant model.Occupant
	require.NoError(t, testDB.First(&persistedOccupant, occupant.ID).Error)
	require.NotNil(t, persistedOccupant.CurrentLeaseID)
	assert.Equal(t, lease.ID, *persistedOccupant.CurrentLeaseID)
}

// A stale room version must roll the whole commit back: no lease row, no
// occupant change.
func TestCommitLeaseCreateVersionConflictRollsBack(t *testing.T) {
	s, testDB := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{RoomNumber: "A-101", Capacity: 2, Status: model.RoomAvailable}
	occupant := &model.Occupant{Name: "alice", ExternalID: "s1", Email: "alice@example.com"}
	require.NoError(t, testDB.Create(room).Error)
	require.NoError(t, testDB.Create(occupant).Error)

	// Another writer bumped the room since our snapshot.
	require.NoError(t, testDB.Model(&model.Room{}).
		Where("id = ?", room.ID).
		Update("version", 7).Error)

	lease := &model.Lease{OccupantID: occupant.ID, RoomID: room.ID, StartedAt: time.Now(), Status: model.LeaseActive}
	room.CurrentOccupancy = 1
	occupant.RoomID = &room.ID

	err := s.CommitLeaseCreate(ctx, lease, room, occupant)
	assert.ErrorIs(t, err, ErrVersionConflict)

	var leaseCount int64
	require.NoError(t, testDB.Model(&model.Lease{}).Count(&leaseCount).Error)
	assert.Equal(t, int64(0), leaseCount)

	var persistedOccupant model.Occupant
	require.NoError(t, testDB.First(&persistedOccupant, occupant.ID).Error)
	assert.Nil(t, persistedOccupant.CurrentLeaseID)
	assert.Equal(t, int64(0), persistedOccupant.Version)
}

func TestCommitLeaseComplete(t *testing.T) {
	s, testDB := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{RoomNumber: "A-101", Capacity: 1, CurrentOccupancy: 1, Status: model.RoomOccupied, Version: 1}
	require.NoError(t, testDB.Create(room).Error)
	lease := &model.Lease{OccupantID: 5, RoomID: room.ID, StartedAt: time.Now(), Status: model.LeaseActive}
	require.NoError(t, testDB.Create(lease).Error)

	now := time.Now().UTC()
	lease.Status = model.LeaseCompleted
	lease.CompletedAt = &now
	room.CurrentOccupancy = 0
	room.Status = model.RoomAvailable

	// Occupant deleted out-of-band: complete with a nil occupant delta.
	require.NoError(t, s.CommitLeaseComplete(ctx, lease, room, nil))

	var persistedLease model.Lease
	require.NoError(t, testDB.First(&persistedLease, lease.ID).Error)
	assert.Equal(t, model.LeaseCompleted, persistedLease.Status)
	require.NotNil(t, persistedLease.CompletedAt)
	assert.Equal(t, int64(1), persistedLease.Version)

	var persistedRoom model.Room
	require.NoError(t, testDB.First(&persistedRoom, room.ID).Error)
	assert.Equal(t, 0, persistedRoom.CurrentOccupancy)
	assert.Equal(t, model.RoomAvailable, persistedRoom.Status)
}

func TestCommitLeaseCompleteStaleLease(t *testing.T) {
	s, testDB := newTestStore(t)
	ctx := context.Background()

	lease := &model.Lease{OccupantID: 5, RoomID: 6, StartedAt: time.Now(), Status: model.LeaseActive}
	require.NoError(t, testDB.Create(lease).Error)
	require.NoError(t, testDB.Model(&model.Lease{}).
		Where("id = ?", lease.ID).
		Update("version", 3).Error)

	now := time.Now().UTC()
	lease.Status = model.LeaseCompleted
	lease.CompletedAt = &now

	err := s.CommitLeaseComplete(ctx, lease, nil, nil)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestOccupancySummaryAggregation(t *testing.T) {
	s, testDB := newTestStore(t)
	ctx := context.Background()

	rooms := []model.Room{
		{RoomNumber: "A-101", Capacity: 2, CurrentOccupancy: 2, Status: model.RoomOccupied},
		{RoomNumber: "A-102", Capacity: 3, CurrentOccupancy: 1, Status: model.RoomAvailable},
		{RoomNumber: "A-103", Capacity: 1, Status: model.RoomAvailable},
		{RoomNumber: "A-104", Capacity: 2, UnderMaintenance: true, Status: model.RoomMaintenance},
	}
	for i := range rooms {
		require.NoError(t, testDB.Create(&rooms[i]).Error)
	}

	summary, err := s.OccupancySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalRooms)
	assert.Equal(t, int64(2), summary.Available)
	assert.Equal(t, int64(1), summary.Occupied)
	assert.Equal(t, int64(1), summary.UnderMaintenance)
	assert.Equal(t, int64(8), summary.TotalCapacity)
	assert.Equal(t, int64(3), summary.TotalOccupied)
	assert.Equal(t, int64(5), summary.AvailableSlots)
}

func TestOccupancySummaryEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	summary, err := s.OccupancySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalRooms)
	assert.Equal(t, int64(0), summary.AvailableSlots)
}
