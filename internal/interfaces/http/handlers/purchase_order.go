// internal/interfaces/http/handlers/purchase_order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/purchasing"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/infrastructure/database/redis"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// PurchaseOrderHandler handles supplier and purchase order endpoints
type PurchaseOrderHandler struct {
	purchasingService *purchasing.Service
	config            *config.Config
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *PurchaseOrderHandler {
	ledger := stock.NewService(db, cfg)
	return &PurchaseOrderHandler{
		purchasingService: purchasing.NewService(db, cfg, ledger, redisClient),
		config:            cfg,
	}
}

// SUPPLIER ENDPOINTS

// CreateSupplier handles POST /admin/suppliers
func (h *PurchaseOrderHandler) CreateSupplier(c *gin.Context) {
	var req purchasing.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	supplier, err := h.purchasingService.CreateSupplier(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    supplier,
	})
}

// GetSuppliers handles GET /suppliers
func (h *PurchaseOrderHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.purchasingService.GetSuppliers()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Suppliers retrieved successfully",
		"data":    suppliers,
	})
}

// GetSupplier handles GET /suppliers/:id
func (h *PurchaseOrderHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.purchasingService.GetSupplier(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier retrieved successfully",
		"data":    supplier,
	})
}

// PURCHASE ORDER ENDPOINTS

// CreatePurchaseOrder handles POST /purchase-orders
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req purchasing.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	order, err := h.purchasingService.CreatePurchaseOrder(&req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    order,
	})
}

// GetPurchaseOrders handles GET /purchase-orders
func (h *PurchaseOrderHandler) GetPurchaseOrders(c *gin.Context) {
	var status *purchasing.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := purchasing.OrderStatus(raw)
		status = &s
	}

	orders, err := h.purchasingService.ListPurchaseOrders(status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase orders retrieved successfully",
		"data":    orders,
	})
}

// GetPurchaseOrder handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.purchasingService.GetPurchaseOrder(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order retrieved successfully",
		"data":    order,
	})
}

// AddLine handles POST /purchase-orders/:id/lines
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req purchasing.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	line, err := h.purchasingService.AddLine(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order line added successfully",
		"data":    line,
	})
}

// SubmitOrder handles PUT /purchase-orders/:id/submit
func (h *PurchaseOrderHandler) SubmitOrder(c *gin.Context) {
	h.advanceOrder(c, h.purchasingService.SubmitOrder, "Purchase order submitted successfully")
}

// ConfirmOrder handles PUT /purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) ConfirmOrder(c *gin.Context) {
	h.advanceOrder(c, h.purchasingService.ConfirmOrder, "Purchase order confirmed successfully")
}

// MarkOrderShipped handles PUT /purchase-orders/:id/ship
func (h *PurchaseOrderHandler) MarkOrderShipped(c *gin.Context) {
	h.advanceOrder(c, h.purchasingService.MarkOrderShipped, "Purchase order marked shipped successfully")
}

// CancelOrder handles PUT /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) CancelOrder(c *gin.Context) {
	h.advanceOrder(c, h.purchasingService.CancelOrder, "Purchase order cancelled successfully")
}

func (h *PurchaseOrderHandler) advanceOrder(c *gin.Context, fn func(uint) (*purchasing.PurchaseOrder, error), message string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := fn(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    order,
	})
}

// ReceiveLine handles POST /purchase-orders/:id/lines/:lineId/receive
func (h *PurchaseOrderHandler) ReceiveLine(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		return
	}

	var req purchasing.ReceiveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	batch, err := h.purchasingService.ReceiveLine(orderID, lineID, &req, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order line received successfully",
		"data":    batch,
	})
}
