// internal/interfaces/http/handlers/stock.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// StockHandler handles stock level and movement ledger endpoints
type StockHandler struct {
	stockService *stock.Service
	config       *config.Config
}

// NewStockHandler creates a new stock handler
func NewStockHandler(db *gorm.DB, cfg *config.Config) *StockHandler {
	return &StockHandler{
		stockService: stock.NewService(db, cfg),
		config:       cfg,
	}
}

// MOVEMENT ENDPOINTS

// RecordMovement handles POST /stock/movements
func (h *StockHandler) RecordMovement(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req stock.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	movement, err := h.stockService.RecordMovement(&req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock movement recorded successfully",
		"data":    movement,
	})
}

// ListMovements handles GET /stock/products/:productId/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	movements, err := h.stockService.ListMovements(productID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    movements,
	})
}

// STOCK LEVEL ENDPOINTS

// GetStockLevel handles GET /stock/levels/:productId/:locationId
func (h *StockHandler) GetStockLevel(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	locationID, ok := parseIDParam(c, "locationId")
	if !ok {
		return
	}

	level, err := h.stockService.GetStockLevel(productID, locationID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// A product never moved at a location has an implicit zero level
	if level == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Stock level retrieved successfully",
			"data": gin.H{
				"product_id":  productID,
				"location_id": locationID,
				"quantity":    0,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock level retrieved successfully",
		"data":    level,
	})
}

// GetTotalStock handles GET /stock/products/:productId/total
func (h *StockHandler) GetTotalStock(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	locationID := parseUintQuery(c, "location_id")

	total, err := h.stockService.TotalStock(productID, locationID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Total stock retrieved successfully",
		"data": gin.H{
			"product_id":  productID,
			"location_id": locationID,
			"total":       total,
		},
	})
}

// ListStockLevels handles GET /stock/locations/:locationId/levels
func (h *StockHandler) ListStockLevels(c *gin.Context) {
	locationID, ok := parseIDParam(c, "locationId")
	if !ok {
		return
	}

	levels, err := h.stockService.ListStockLevels(locationID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock levels retrieved successfully",
		"data":    levels,
	})
}
