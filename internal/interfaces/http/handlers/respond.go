// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
)

// handleServiceError maps service errors onto HTTP statuses: validation
// failures to 400, missing resources to 404, write conflicts to 409,
// anything else to 500 with a generic message.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

// parseIDParam parses a numeric path parameter, responding 400 on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(value), true
}

// parseUintQuery parses an optional numeric query parameter
func parseUintQuery(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}
