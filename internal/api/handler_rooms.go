package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/event"
	"hostel-allocation-backend/internal/model"
)

type createRoomRequest struct {
	RoomNumber       string `json:"roomNumber" binding:"required"`
	Capacity         int    `json:"capacity" binding:"required,min=1"`
	Floor            int    `json:"floor"`
	Amenities        string `json:"amenities"`
	UnderMaintenance bool   `json:"underMaintenance"`
}

// CreateRoom handles POST /api/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing model.Room
	err := h.store.DB().Where("room_number = ?", req.RoomNumber).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Room number already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check room number"})
		return
	}

	room := model.Room{
		RoomNumber:       req.RoomNumber,
		Capacity:         req.Capacity,
		Status:           model.DeriveRoomStatus(0, req.Capacity, req.UnderMaintenance),
		UnderMaintenance: req.UnderMaintenance,
		Floor:            req.Floor,
		Amenities:        req.Amenities,
	}
	if err := h.store.DB().Create(&room).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	h.bustListings()
	h.publish(event.Event{Type: event.RoomCreated, ID: room.ID, Room: &room})
	c.JSON(http.StatusCreated, room)
}

type updateRoomRequest struct {
	RoomNumber       *string `json:"roomNumber"`
	Capacity         *int    `json:"capacity"`
	Floor            *int    `json:"floor"`
	Amenities        *string `json:"amenities"`
	UnderMaintenance *bool   `json:"underMaintenance"`
}

// UpdateRoom handles PUT /api/rooms/:id. Occupancy and status are owned by
// the engine; this handler only re-derives status when capacity or the
// maintenance flag change. The write is version-checked so an update racing
// an allocation fails retryably instead of clobbering it.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	if req.RoomNumber != nil && *req.RoomNumber != room.RoomNumber {
		var existing model.Room
		if err := h.store.DB().Where("room_number = ?", *req.RoomNumber).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Room number already exists"})
			return
		}
		room.RoomNumber = *req.RoomNumber
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be at least 1"})
			return
		}
		if *req.Capacity < room.CurrentOccupancy {
			c.JSON(http.StatusConflict, gin.H{"error": "Capacity cannot be below current occupancy"})
			return
		}
		room.Capacity = *req.Capacity
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.Amenities != nil {
		room.Amenities = *req.Amenities
	}
	if req.UnderMaintenance != nil {
		room.UnderMaintenance = *req.UnderMaintenance
	}
	room.Status = model.DeriveRoomStatus(room.CurrentOccupancy, room.Capacity, room.UnderMaintenance)

	res := h.store.DB().Model(&model.Room{}).
		Where("id = ? AND version = ?", room.ID, room.Version).
		Updates(map[string]any{
			"room_number":       room.RoomNumber,
			"capacity":          room.Capacity,
			"floor":             room.Floor,
			"amenities":         room.Amenities,
			"under_maintenance": room.UnderMaintenance,
			"status":            room.Status,
			"version":           room.Version + 1,
		})
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
		return
	}
	if res.RowsAffected == 0 {
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Room changed concurrently, retry"})
		return
	}
	room.Version++

	h.bustListings()
	h.publish(event.Event{Type: event.RoomUpdated, ID: room.ID, Room: &room})
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id through the engine, which
// rejects rooms that still have occupants.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	if err := h.engine.DeleteRoom(c.Request.Context(), id); err != nil {
		abortEngineError(c, err)
		return
	}

	h.bustListings()
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	var rooms []model.Room
	if err := h.store.DB().Order("room_number ASC").Find(&rooms).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetOccupancySummary handles GET /api/rooms/stats/summary.
func (h *Handler) GetOccupancySummary(c *gin.Context) {
	summary, err := h.engine.OccupancySummary(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
