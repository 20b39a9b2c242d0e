// internal/interfaces/http/handlers/batch.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// BatchHandler handles stock batch endpoints
type BatchHandler struct {
	stockService *stock.Service
	config       *config.Config
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(db *gorm.DB, cfg *config.Config) *BatchHandler {
	return &BatchHandler{
		stockService: stock.NewService(db, cfg),
		config:       cfg,
	}
}

// CreateBatch handles POST /stock/batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req stock.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	batch, err := h.stockService.CreateBatch(&req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Batch created successfully",
		"data":    batch,
	})
}

// GetBatch handles GET /stock/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.stockService.GetBatch(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Batch retrieved successfully",
		"data":    batch,
	})
}

// ListBatches handles GET /stock/batches
// Requires product_id and location_id query parameters; consumable=true
// narrows the list to batches with remaining stock, in FEFO order.
func (h *BatchHandler) ListBatches(c *gin.Context) {
	productID := parseUintQuery(c, "product_id")
	locationID := parseUintQuery(c, "location_id")
	if productID == nil || locationID == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product_id and location_id query parameters are required",
		})
		return
	}

	var batches []stock.StockBatch
	var err error
	if c.Query("consumable") == "true" {
		batches, err = h.stockService.ListConsumableBatches(*productID, *locationID)
	} else {
		batches, err = h.stockService.ListBatches(*productID, *locationID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Batches retrieved successfully",
		"data":    batches,
	})
}

// ReclassifyExpiredBatches handles POST /admin/stock/batches/expiry-sweep
func (h *BatchHandler) ReclassifyExpiredBatches(c *gin.Context) {
	reclassified, err := h.stockService.ReclassifyExpiredBatches()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expired batches reclassified successfully",
		"data": gin.H{
			"reclassified": reclassified,
		},
	})
}
