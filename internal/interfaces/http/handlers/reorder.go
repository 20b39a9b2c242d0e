// internal/interfaces/http/handlers/reorder.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/purchasing"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/infrastructure/database/redis"
	"gorm.io/gorm"
)

// ReorderHandler handles reorder rule and suggestion endpoints
type ReorderHandler struct {
	purchasingService *purchasing.Service
	config            *config.Config
}

// NewReorderHandler creates a new reorder handler
func NewReorderHandler(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ReorderHandler {
	ledger := stock.NewService(db, cfg)
	return &ReorderHandler{
		purchasingService: purchasing.NewService(db, cfg, ledger, redisClient),
		config:            cfg,
	}
}

// CreateReorderRule handles POST /admin/reorder-rules
func (h *ReorderHandler) CreateReorderRule(c *gin.Context) {
	var req purchasing.CreateReorderRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	rule, err := h.purchasingService.CreateReorderRule(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Rules changed, cached suggestions are stale
	h.purchasingService.InvalidateReorderCache(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reorder rule created successfully",
		"data":    rule,
	})
}

// GetReorderRules handles GET /reorder-rules
func (h *ReorderHandler) GetReorderRules(c *gin.Context) {
	rules, err := h.purchasingService.ListReorderRules()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder rules retrieved successfully",
		"data":    rules,
	})
}

// GetReorderSuggestions handles GET /reorder-suggestions
// fresh=true bypasses the cache and re-evaluates against live stock.
func (h *ReorderHandler) GetReorderSuggestions(c *gin.Context) {
	var suggestions []purchasing.ReorderSuggestion
	var err error

	if c.Query("fresh") == "true" {
		h.purchasingService.InvalidateReorderCache(c.Request.Context())
		suggestions, err = h.purchasingService.EvaluateReorderRules()
	} else {
		suggestions, err = h.purchasingService.CachedReorderSuggestions(c.Request.Context())
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reorder suggestions retrieved successfully",
		"data":    suggestions,
	})
}
