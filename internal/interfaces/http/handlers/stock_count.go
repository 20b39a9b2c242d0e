// internal/interfaces/http/handlers/stock_count.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/domain/stockcount"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// StockCountHandler handles physical stock count endpoints
type StockCountHandler struct {
	countService *stockcount.Service
	config       *config.Config
}

// NewStockCountHandler creates a new stock count handler
func NewStockCountHandler(db *gorm.DB, cfg *config.Config) *StockCountHandler {
	ledger := stock.NewService(db, cfg)
	return &StockCountHandler{
		countService: stockcount.NewService(db, cfg, ledger),
		config:       cfg,
	}
}

// StartCount handles POST /stock-counts
func (h *StockCountHandler) StartCount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req stockcount.StartCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	count, err := h.countService.StartCount(&req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock count started successfully",
		"data":    count,
	})
}

// GetCounts handles GET /stock-counts
func (h *StockCountHandler) GetCounts(c *gin.Context) {
	locationID := parseUintQuery(c, "location_id")

	counts, err := h.countService.ListCounts(locationID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock counts retrieved successfully",
		"data":    counts,
	})
}

// GetCount handles GET /stock-counts/:id
func (h *StockCountHandler) GetCount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := h.countService.GetCount(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock count retrieved successfully",
		"data":    count,
	})
}

// EnterCount handles PUT /stock-counts/:id/lines/:lineId
func (h *StockCountHandler) EnterCount(c *gin.Context) {
	countID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		return
	}

	var req struct {
		CountedQuantity *float64 `json:"counted_quantity" binding:"required"`
		Reason          string   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	line, err := h.countService.EnterCount(countID, lineID, *req.CountedQuantity, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Count recorded successfully",
		"data":    line,
	})
}

// SubmitCount handles PUT /stock-counts/:id/submit
func (h *StockCountHandler) SubmitCount(c *gin.Context) {
	h.transitionCount(c, h.countService.SubmitCount, "Stock count submitted successfully")
}

// ApproveCount handles PUT /stock-counts/:id/approve
func (h *StockCountHandler) ApproveCount(c *gin.Context) {
	h.transitionCount(c, h.countService.ApproveCount, "Stock count approved successfully")
}

// CancelCount handles PUT /stock-counts/:id/cancel
func (h *StockCountHandler) CancelCount(c *gin.Context) {
	h.transitionCount(c, h.countService.CancelCount, "Stock count cancelled successfully")
}

func (h *StockCountHandler) transitionCount(c *gin.Context, fn func(uint) (*stockcount.StockCount, error), message string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := fn(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    count,
	})
}

// PostAdjustments handles POST /stock-counts/:id/post
func (h *StockCountHandler) PostAdjustments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := h.countService.PostAdjustments(id, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock count adjustments posted successfully",
		"data":    count,
	})
}
