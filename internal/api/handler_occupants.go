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

type createOccupantRequest struct {
	Name       string `json:"name" binding:"required"`
	ExternalID string `json:"externalId" binding:"required"`
	Course     string `json:"course"`
	Contact    string `json:"contact"`
	Email      string `json:"email" binding:"required,email"`
}

// CreateOccupant handles POST /api/occupants.
func (h *Handler) CreateOccupant(c *gin.Context) {
	var req createOccupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing model.Occupant
	err := h.store.DB().
		Where("external_id = ? OR email = ?", req.ExternalID, req.Email).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Occupant ID or email already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check occupant"})
		return
	}

	occupant := model.Occupant{
		Name:       req.Name,
		ExternalID: req.ExternalID,
		Course:     req.Course,
		Contact:    req.Contact,
		Email:      req.Email,
	}
	if err := h.store.DB().Create(&occupant).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create occupant"})
		return
	}

	h.bustListings()
	h.publish(event.Event{Type: event.OccupantCreated, ID: occupant.ID, Occupant: &occupant})
	c.JSON(http.StatusCreated, occupant)
}

type updateOccupantRequest struct {
	Name       *string `json:"name"`
	ExternalID *string `json:"externalId"`
	Course     *string `json:"course"`
	Contact    *string `json:"contact"`
	Email      *string `json:"email"`
}

// UpdateOccupant handles PUT /api/occupants/:id. Profile fields only; the
// room and lease back-references belong to the engine and are not touched
// here.
func (h *Handler) UpdateOccupant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid occupant ID"})
		return
	}

	var req updateOccupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var occupant model.Occupant
	if err := h.store.DB().First(&occupant, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Occupant not found"})
		return
	}

	if req.ExternalID != nil && *req.ExternalID != occupant.ExternalID {
		var existing model.Occupant
		if err := h.store.DB().Where("external_id = ?", *req.ExternalID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Occupant ID already exists"})
			return
		}
		occupant.ExternalID = *req.ExternalID
	}
	if req.Email != nil && *req.Email != occupant.Email {
		var existing model.Occupant
		if err := h.store.DB().Where("email = ?", *req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		}
		occupant.Email = *req.Email
	}
	if req.Name != nil {
		occupant.Name = *req.Name
	}
	if req.Course != nil {
		occupant.Course = *req.Course
	}
	if req.Contact != nil {
		occupant.Contact = *req.Contact
	}

	res := h.store.DB().Model(&model.Occupant{}).
		Where("id = ? AND version = ?", occupant.ID, occupant.Version).
		Updates(map[string]any{
			"name":        occupant.Name,
			"external_id": occupant.ExternalID,
			"course":      occupant.Course,
			"contact":     occupant.Contact,
			"email":       occupant.Email,
			"version":     occupant.Version + 1,
		})
	if res.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update occupant"})
		return
	}
	if res.RowsAffected == 0 {
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Occupant changed concurrently, retry"})
		return
	}
	occupant.Version++

	h.bustListings()
	h.publish(event.Event{Type: event.OccupantUpdated, ID: occupant.ID, Occupant: &occupant})
	c.JSON(http.StatusOK, occupant)
}

// DeleteOccupant handles DELETE /api/occupants/:id through the engine,
// which rejects occupants that still hold an active lease.
func (h *Handler) DeleteOccupant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid occupant ID"})
		return
	}

	if err := h.engine.DeleteOccupant(c.Request.Context(), id); err != nil {
		abortEngineError(c, err)
		return
	}

	h.bustListings()
	c.JSON(http.StatusOK, gin.H{"message": "Occupant deleted successfully"})
}

// ListOccupants handles GET /api/occupants.
func (h *Handler) ListOccupants(c *gin.Context) {
	var occupants []model.Occupant
	if err := h.store.DB().Preload("Room").Order("name ASC").Find(&occupants).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve occupants"})
		return
	}
	c.JSON(http.StatusOK, occupants)
}

// GetOccupant handles GET /api/occupants/:id.
func (h *Handler) GetOccupant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid occupant ID"})
		return
	}

	var occupant model.Occupant
	if err := h.store.DB().Preload("Room").First(&occupant, id).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Occupant not found"})
		return
	}
	c.JSON(http.StatusOK, occupant)
}
