package api

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/db"
	"hostel-allocation-backend/internal/engine"
	"hostel-allocation-backend/internal/event"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	appStore := store.NewGormStore(testDB)
	broker := event.NewBroker(64)
	eng := engine.New(appStore, broker, 2*time.Second)

	cfg := &config.ServerConfig{RateLimitPerSec: 10000, CacheTTLSeconds: 1}
	return NewRouter(appStore, eng, broker, nil, cfg), testDB
}

func seedTestRoom(t *testing.T, testDB *gorm.DB, number string, capacity int) *model.Room {
	t.Helper()
	room := &model.Room{RoomNumber: number, Capacity: capacity, Status: model.RoomAvailable}
	require.NoError(t, testDB.Create(room).Error)
	return room
}

func seedTestOccupant(t *testing.T, testDB *gorm.DB, name string) *model.Occupant {
	t.Helper()
	occupant := &model.Occupant{
		Name:       name,
		ExternalID: name + "-id",
		Email:      name + "@example.com",
	}
	require.NoError(t, testDB.Create(occupant).Error)
	return occupant
}
