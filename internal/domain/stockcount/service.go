// internal/domain/stockcount/service.go
package stockcount

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/location"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles the physical stock count workflow. Discrepancies are
// posted as compensating adjustment movements through the ledger; the count
// itself never edits stock levels directly.
type Service struct {
	db     *gorm.DB
	config *config.Config
	ledger *stock.Service
}

// NewService creates a new stock count service
func NewService(db *gorm.DB, cfg *config.Config, ledger *stock.Service) *Service {
	return &Service{
		db:     db,
		config: cfg,
		ledger: ledger,
	}
}

// StartCountRequest represents count creation data
type StartCountRequest struct {
	LocationID uint      `json:"location_id" binding:"required"`
	CountType  CountType `json:"count_type"`
	Notes      string    `json:"notes"`
}

// StartCount opens a count at a location, snapshotting every stock level
// with positive quantity into a line. Movements recorded while the count is
// open are not reconciled against it; the last posted count wins.
func (s *Service) StartCount(req *StartCountRequest, countedBy uint) (*StockCount, error) {
	countType := req.CountType
	if countType == "" {
		countType = CountTypeFull
	}

	var loc location.Location
	if err := s.db.First(&loc, req.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("location", req.LocationID)
		}
		return nil, fmt.Errorf("failed to load location: %w", err)
	}

	var count *StockCount
	err := s.ledger.WithRetry("start stock count", func(tx *gorm.DB) error {
		c := &StockCount{
			LocationID: req.LocationID,
			CountDate:  time.Now().UTC(),
			CountType:  countType,
			Status:     CountStatusDraft,
			Notes:      req.Notes,
			CountedBy:  countedBy,
		}
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create stock count: %w", err)
		}

		var levels []stock.StockLevel
		if err := tx.Where("location_id = ? AND quantity > 0", req.LocationID).
			Order("product_id").
			Find(&levels).Error; err != nil {
			return fmt.Errorf("failed to snapshot stock levels: %w", err)
		}

		for _, level := range levels {
			line := StockCountLine{
				StockCountID:   c.ID,
				ProductID:      level.ProductID,
				SystemQuantity: level.Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create count line: %w", err)
			}
		}

		c.TotalProducts = len(levels)
		if err := tx.Save(c).Error; err != nil {
			return fmt.Errorf("failed to update count totals: %w", err)
		}

		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return count, nil
}

// GetCount retrieves a count with its lines
func (s *Service) GetCount(id uint) (*StockCount, error) {
	var count StockCount
	if err := s.db.Preload("Lines").First(&count, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("stock count", id)
		}
		return nil, fmt.Errorf("failed to load stock count: %w", err)
	}
	return &count, nil
}

// ListCounts retrieves counts, optionally scoped to a location, newest first
func (s *Service) ListCounts(locationID *uint) ([]StockCount, error) {
	query := s.db.Order("created_at DESC")
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var counts []StockCount
	if err := query.Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock counts: %w", err)
	}
	return counts, nil
}

// EnterCount records the physically counted quantity on a line. Stock levels
// are untouched until posting, so an open count never blocks concurrent
// movements.
func (s *Service) EnterCount(countID, lineID uint, countedQuantity float64, reason string) (*StockCountLine, error) {
	if countedQuantity < 0 {
		return nil, apperr.NewValidation("counted_quantity", "counted quantity cannot be negative")
	}

	count, err := s.GetCount(countID)
	if err != nil {
		return nil, err
	}
	if count.Status != CountStatusDraft && count.Status != CountStatusSubmitted {
		return nil, apperr.NewValidation("status", fmt.Sprintf("counts cannot be entered while the count is '%s'", count.Status))
	}

	var line StockCountLine
	if err := s.db.Where("id = ? AND stock_count_id = ?", lineID, countID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("stock count line", lineID)
		}
		return nil, fmt.Errorf("failed to load count line: %w", err)
	}

	line.CountedQuantity = &countedQuantity
	if reason != "" {
		line.AdjustmentReason = reason
	}
	if err := s.db.Save(&line).Error; err != nil {
		return nil, fmt.Errorf("failed to save count line: %w", err)
	}

	return &line, nil
}

// SubmitCount moves a draft count to submitted for review
func (s *Service) SubmitCount(countID uint) (*StockCount, error) {
	return s.transition(countID, CountStatusDraft, CountStatusSubmitted)
}

// ApproveCount marks a submitted count ready for posting
func (s *Service) ApproveCount(countID uint) (*StockCount, error) {
	return s.transition(countID, CountStatusSubmitted, CountStatusApproved)
}

// CancelCount abandons a count from any pre-posted state
func (s *Service) CancelCount(countID uint) (*StockCount, error) {
	var count *StockCount
	err := s.ledger.WithRetry("cancel stock count", func(tx *gorm.DB) error {
		var c StockCount
		if err := stock.LockForUpdate(tx).First(&c, countID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("stock count", countID)
			}
			return fmt.Errorf("failed to load stock count: %w", err)
		}
		if c.Status.IsTerminal() {
			return apperr.NewValidation("status", fmt.Sprintf("cannot cancel a count in status '%s'", c.Status))
		}

		c.Status = CountStatusCancelled
		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("failed to cancel count: %w", err)
		}
		count = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

func (s *Service) transition(countID uint, from, to CountStatus) (*StockCount, error) {
	var count *StockCount
	err := s.ledger.WithRetry("transition stock count", func(tx *gorm.DB) error {
		var c StockCount
		if err := stock.LockForUpdate(tx).First(&c, countID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("stock count", countID)
			}
			return fmt.Errorf("failed to load stock count: %w", err)
		}
		if c.Status != from {
			return apperr.NewValidation("status", fmt.Sprintf("cannot move count from '%s' to '%s'", c.Status, to))
		}

		c.Status = to
		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("failed to update count status: %w", err)
		}
		count = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

// PostAdjustments computes the discrepancy for every counted line and posts
// one compensating adjustment movement per nonzero discrepancy, then marks
// the count posted. All-or-nothing: every eligible line is adjusted and the
// count stamped in one transaction, or nothing is. Lines whose adjustment
// already posted are skipped, so a retried call never doubles a movement.
func (s *Service) PostAdjustments(countID, approvedBy uint) (*StockCount, error) {
	var count *StockCount
	err := s.ledger.WithRetry("post count adjustments", func(tx *gorm.DB) error {
		var c StockCount
		if err := stock.LockForUpdate(tx).First(&c, countID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("stock count", countID)
			}
			return fmt.Errorf("failed to load stock count: %w", err)
		}
		if c.Status != CountStatusSubmitted && c.Status != CountStatusApproved {
			return apperr.NewValidation("status", fmt.Sprintf("cannot post a count in status '%s'", c.Status))
		}

		var lines []StockCountLine
		if err := tx.Where("stock_count_id = ?", c.ID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to load count lines: %w", err)
		}

		now := time.Now().UTC()
		discrepancies := 0
		productsCounted := 0
		var totalDiscrepancyValue float64
		var countedProductIDs []uint

		for i := range lines {
			line := &lines[i]
			if line.CountedQuantity == nil {
				continue
			}
			productsCounted++
			countedProductIDs = append(countedProductIDs, line.ProductID)

			discrepancy := *line.CountedQuantity - line.SystemQuantity
			line.Discrepancy = &discrepancy

			if discrepancy != 0 {
				discrepancies++

				unitCost := s.latestUnitCost(tx, line.ProductID, c.LocationID)
				value := discrepancy * unitCost
				line.DiscrepancyValue = &value
				totalDiscrepancyValue += value

				if !line.AdjustmentPosted {
					reason := line.AdjustmentReason
					if reason == "" {
						reason = "stock count adjustment"
					}

					moveReq := &stock.RecordMovementRequest{
						ProductID:     line.ProductID,
						Quantity:      abs(discrepancy),
						ReferenceType: "stock_count",
						ReferenceID:   &c.ID,
						Reason:        reason,
					}
					if discrepancy > 0 {
						moveReq.MovementType = stock.MovementAdjustmentAdd
						moveReq.ToLocationID = &c.LocationID
					} else {
						moveReq.MovementType = stock.MovementAdjustmentRemove
						moveReq.FromLocationID = &c.LocationID
					}

					if _, err := s.ledger.ApplyMovement(tx, moveReq, approvedBy); err != nil {
						return err
					}
					line.AdjustmentPosted = true
				}
			}

			line.CountedAt = &now
			if err := tx.Save(line).Error; err != nil {
				return fmt.Errorf("failed to save count line: %w", err)
			}
		}

		// Stamp the counted timestamp, only on levels a line actually counted
		if len(countedProductIDs) > 0 {
			if err := tx.Model(&stock.StockLevel{}).
				Where("location_id = ? AND product_id IN ?", c.LocationID, countedProductIDs).
				Update("last_counted", now).Error; err != nil {
				return fmt.Errorf("failed to stamp stock levels: %w", err)
			}
		}

		c.Status = CountStatusPosted
		c.DiscrepanciesFound = discrepancies
		c.ProductsCounted = productsCounted
		c.DiscrepancyValue = totalDiscrepancyValue
		c.ApprovedBy = &approvedBy
		c.ApprovedAt = &now
		if err := tx.Save(&c).Error; err != nil {
			return fmt.Errorf("failed to update stock count: %w", err)
		}

		count = &c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return count, nil
}

// latestUnitCost values a discrepancy at the most recently received batch's
// unit cost for the product at the location, zero when no batch exists
func (s *Service) latestUnitCost(tx *gorm.DB, productID, locationID uint) float64 {
	var batch stock.StockBatch
	err := tx.Where("product_id = ? AND location_id = ?", productID, locationID).
		Order("received_date DESC, id DESC").
		First(&batch).Error
	if err != nil {
		return 0
	}
	return batch.UnitCost
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
