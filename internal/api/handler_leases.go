package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/model"
)

type createLeaseRequest struct {
	OccupantID int64  `json:"occupantId" binding:"required"`
	RoomID     int64  `json:"roomId" binding:"required"`
	Notes      string `json:"notes"`
}

// CreateLease handles POST /api/leases.
func (h *Handler) CreateLease(c *gin.Context) {
	var req createLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lease, err := h.engine.CreateLease(c.Request.Context(), req.OccupantID, req.RoomID, req.Notes)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	h.bustListings()
	c.JSON(http.StatusCreated, lease)
}

// CompleteLease handles POST /api/leases/:id/complete.
func (h *Handler) CompleteLease(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lease ID"})
		return
	}

	lease, err := h.engine.CompleteLease(c.Request.Context(), id)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	h.bustListings()
	c.JSON(http.StatusOK, lease)
}

// DeleteLease handles DELETE /api/leases/:id. Only completed leases may be
// removed.
func (h *Handler) DeleteLease(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lease ID"})
		return
	}

	if err := h.engine.DeleteLease(c.Request.Context(), id); err != nil {
		abortEngineError(c, err)
		return
	}

	h.bustListings()
	c.JSON(http.StatusOK, gin.H{"message": "Lease deleted successfully"})
}

// ListLeases handles GET /api/leases, newest first.
func (h *Handler) ListLeases(c *gin.Context) {
	var leases []model.Lease
	if err := h.store.DB().
		Preload("Occupant").Preload("Room").
		Order("started_at DESC").
		Find(&leases).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leases"})
		return
	}
	c.JSON(http.StatusOK, leases)
}

// GetLease handles GET /api/leases/:id.
func (h *Handler) GetLease(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lease ID"})
		return
	}

	var lease model.Lease
	if err := h.store.DB().
		Preload("Occupant").Preload("Room").
		First(&lease, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Lease not found"})
		return
	}
	c.JSON(http.StatusOK, lease)
}
