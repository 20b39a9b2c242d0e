// internal/domain/purchasing/reorder.go
package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
)

const reorderCacheKey = "reorder:suggestions"

// ReorderSuggestion is the evaluator's output for one rule whose scope has
// fallen to or below its reorder point. The AutoCreatePO flag rides along on
// the rule for the external purchasing scheduler; this service never acts
// on it.
type ReorderSuggestion struct {
	Rule         ReorderRule `json:"rule"`
	CurrentStock float64     `json:"current_stock"`
	Shortfall    float64     `json:"shortfall"`
}

// CreateReorderRuleRequest represents reorder rule configuration
type CreateReorderRuleRequest struct {
	ProductID           uint     `json:"product_id" binding:"required"`
	LocationID          *uint    `json:"location_id,omitempty"`
	MinLevel            float64  `json:"min_level"`
	ReorderPoint        float64  `json:"reorder_point" binding:"required"`
	ReorderQuantity     float64  `json:"reorder_quantity" binding:"required"`
	MaxLevel            *float64 `json:"max_level,omitempty"`
	PreferredSupplierID *uint    `json:"preferred_supplier_id,omitempty"`
	AutoCreatePO        bool     `json:"auto_create_po"`
}

// CreateReorderRule creates a reorder rule for a product, scoped to one
// location or to all of them
func (s *Service) CreateReorderRule(req *CreateReorderRuleRequest) (*ReorderRule, error) {
	if req.ReorderPoint < 0 || req.ReorderQuantity <= 0 {
		return nil, apperr.NewValidation("reorder_point", "reorder point must be non-negative and reorder quantity positive")
	}

	rule := &ReorderRule{
		ProductID:           req.ProductID,
		LocationID:          req.LocationID,
		MinLevel:            req.MinLevel,
		ReorderPoint:        req.ReorderPoint,
		ReorderQuantity:     req.ReorderQuantity,
		MaxLevel:            req.MaxLevel,
		PreferredSupplierID: req.PreferredSupplierID,
		AutoCreatePO:        req.AutoCreatePO,
		IsActive:            true,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create reorder rule: %w", err)
	}

	return rule, nil
}

// ListReorderRules returns all active reorder rules
func (s *Service) ListReorderRules() ([]ReorderRule, error) {
	var rules []ReorderRule
	if err := s.db.Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list reorder rules: %w", err)
	}
	return rules, nil
}

// EvaluateReorderRules scans every active rule against current stock and
// returns a suggestion for each rule at or below its reorder point. Pure
// read; it never creates a purchase order, even when AutoCreatePO is set.
// That decision belongs to the external scheduler consuming this list.
func (s *Service) EvaluateReorderRules() ([]ReorderSuggestion, error) {
	rules, err := s.ListReorderRules()
	if err != nil {
		return nil, err
	}

	suggestions := []ReorderSuggestion{}
	for _, rule := range rules {
		current, err := s.ledger.TotalStock(rule.ProductID, rule.LocationID)
		if err != nil {
			return nil, err
		}

		if current <= rule.ReorderPoint {
			suggestions = append(suggestions, ReorderSuggestion{
				Rule:         rule,
				CurrentStock: current,
				Shortfall:    rule.ReorderPoint - current,
			})
		}
	}

	return suggestions, nil
}

// CachedReorderSuggestions serves the suggestion list from Redis when fresh,
// re-evaluating on a miss. Falls back to a direct evaluation when Redis is
// unavailable.
func (s *Service) CachedReorderSuggestions(ctx context.Context) ([]ReorderSuggestion, error) {
	if s.redis == nil {
		return s.EvaluateReorderRules()
	}

	var cached []ReorderSuggestion
	if err := s.redis.GetJSON(ctx, reorderCacheKey, &cached); err == nil {
		return cached, nil
	}

	suggestions, err := s.EvaluateReorderRules()
	if err != nil {
		return nil, err
	}

	ttl := s.config.Ledger.ReorderCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	// A failed cache write only costs the next caller a re-evaluation
	_ = s.redis.SetJSON(ctx, reorderCacheKey, suggestions, ttl)

	return suggestions, nil
}

// InvalidateReorderCache drops the cached suggestion list, for callers that
// just changed rules or recorded a large movement
func (s *Service) InvalidateReorderCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, reorderCacheKey)
}
