package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-allocation-backend/internal/model"
)

func putJSON(router http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req, _ := http.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRoomEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("rejects zero capacity", func(t *testing.T) {
		w := postJSON(router, "/api/rooms", map[string]any{"roomNumber": "A-101", "capacity": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("creates available room", func(t *testing.T) {
		w := postJSON(router, "/api/rooms", map[string]any{"roomNumber": "A-101", "capacity": 2, "floor": 1})
		require.Equal(t, http.StatusCreated, w.Code)

		var room model.Room
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
		assert.Equal(t, model.RoomAvailable, room.Status)
		assert.Equal(t, 0, room.CurrentOccupancy)
	})

	t.Run("maintenance flag derives status", func(t *testing.T) {
		w := postJSON(router, "/api/rooms", map[string]any{
			"roomNumber": "A-102", "capacity": 2, "underMaintenance": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var room model.Room
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
		assert.Equal(t, model.RoomMaintenance, room.Status)
	})

	t.Run("duplicate number conflicts", func(t *testing.T) {
		w := postJSON(router, "/api/rooms", map[string]any{"roomNumber": "A-101", "capacity": 3})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUpdateRoomEndpoint(t *testing.T) {
	router, testDB := setupTestRouter(t)

	room := seedTestRoom(t, testDB, "B-201", 2)
	occupant := seedTestOccupant(t, testDB, "alice")

	w := postJSON(router, "/api/leases", map[string]any{"occupantId": occupant.ID, "roomId": room.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("cannot shrink below occupancy", func(t *testing.T) {
		w := putJSON(router, fmt.Sprintf("/api/rooms/%d", room.ID), map[string]any{"capacity": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("shrinking to occupancy marks occupied", func(t *testing.T) {
		w := putJSON(router, fmt.Sprintf("/api/rooms/%d", room.ID), map[string]any{"capacity": 1})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Room
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, model.RoomOccupied, updated.Status)
	})

	t.Run("maintenance flag wins when not full", func(t *testing.T) {
		w := putJSON(router, fmt.Sprintf("/api/rooms/%d", room.ID), map[string]any{
			"capacity": 3, "underMaintenance": true,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Room
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, model.RoomMaintenance, updated.Status)
	})

	t.Run("unknown room", func(t *testing.T) {
		w := putJSON(router, "/api/rooms/99999", map[string]any{"capacity": 2})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteRoomEndpoint(t *testing.T) {
	router, testDB := setupTestRouter(t)

	room := seedTestRoom(t, testDB, "C-301", 1)
	occupant := seedTestOccupant(t, testDB, "alice")

	w := postJSON(router, "/api/leases", map[string]any{"occupantId": occupant.ID, "roomId": room.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var lease model.Lease
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lease))

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/rooms/%d", room.ID), nil)
	del := httptest.NewRecorder()
	router.ServeHTTP(del, req)
	assert.Equal(t, http.StatusConflict, del.Code)

	w = postJSON(router, fmt.Sprintf("/api/leases/%d/complete", lease.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/rooms/%d", room.ID), nil)
	del = httptest.NewRecorder()
	router.ServeHTTP(del, req)
	assert.Equal(t, http.StatusOK, del.Code)

	var count int64
	require.NoError(t, testDB.Model(&model.Room{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestOccupancySummaryEndpoint(t *testing.T) {
	router, testDB := setupTestRouter(t)

	seedTestRoom(t, testDB, "D-401", 2)
	room := seedTestRoom(t, testDB, "D-402", 1)
	occupant := seedTestOccupant(t, testDB, "alice")

	w := postJSON(router, "/api/leases", map[string]any{"occupantId": occupant.ID, "roomId": room.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/rooms/stats/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(2), summary["totalRooms"])
	assert.Equal(t, int64(1), summary["occupied"])
	assert.Equal(t, int64(1), summary["available"])
	assert.Equal(t, int64(3), summary["totalCapacity"])
	assert.Equal(t, int64(1), summary["totalOccupied"])
	assert.Equal(t, int64(2), summary["availableSlots"])
}

func TestOccupantEndpoints(t *testing.T) {
	router, testDB := setupTestRouter(t)

	t.Run("create validates email", func(t *testing.T) {
		w := postJSON(router, "/api/occupants", map[string]any{
			"name": "alice", "externalId": "s-1", "email": "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var created model.Occupant
	t.Run("create", func(t *testing.T) {
		w := postJSON(router, "/api/occupants", map[string]any{
			"name": "alice", "externalId": "s-1", "email": "alice@example.com", "course": "physics",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "alice", created.Name)
	})

	t.Run("duplicate external id conflicts", func(t *testing.T) {
		w := postJSON(router, "/api/occupants", map[string]any{
			"name": "alice2", "externalId": "s-1", "email": "alice2@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		w := putJSON(router, fmt.Sprintf("/api/occupants/%d", created.ID), map[string]any{"course": "chemistry"})
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Occupant
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "chemistry", updated.Course)
	})

	t.Run("delete blocked while allocated", func(t *testing.T) {
		room := seedTestRoom(t, testDB, "E-501", 1)
		w := postJSON(router, "/api/leases", map[string]any{"occupantId": created.ID, "roomId": room.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/occupants/%d", created.ID), nil)
		del := httptest.NewRecorder()
		router.ServeHTTP(del, req)
		assert.Equal(t, http.StatusConflict, del.Code)
	})
}
