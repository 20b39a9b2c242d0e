// internal/interfaces/http/handlers/location.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/location"
	"gorm.io/gorm"
)

// LocationHandler handles storage location endpoints
type LocationHandler struct {
	locationService *location.Service
	config          *config.Config
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(db *gorm.DB, cfg *config.Config) *LocationHandler {
	return &LocationHandler{
		locationService: location.NewService(db, cfg),
		config:          cfg,
	}
}

// CreateLocation handles POST /admin/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req location.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	loc, err := h.locationService.CreateLocation(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Location created successfully",
		"data":    loc,
	})
}

// GetLocations handles GET /locations
func (h *LocationHandler) GetLocations(c *gin.Context) {
	locations, err := h.locationService.GetLocations()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Locations retrieved successfully",
		"data":    locations,
	})
}

// GetLocation handles GET /locations/:id
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loc, err := h.locationService.GetLocation(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location retrieved successfully",
		"data":    loc,
	})
}

// UpdateLocation handles PUT /admin/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req location.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	loc, err := h.locationService.UpdateLocation(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location updated successfully",
		"data":    loc,
	})
}

// DeactivateLocation handles DELETE /admin/locations/:id
func (h *LocationHandler) DeactivateLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.DeactivateLocation(id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location deactivated successfully",
	})
}
