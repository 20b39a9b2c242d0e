// internal/domain/stock/batch.go
package stock

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
)

// CreateBatchRequest represents a manual batch intake outside of purchase
// order receiving (donations, opening stock, supplier drop-offs without a PO)
type CreateBatchRequest struct {
	ProductID       uint       `json:"product_id" binding:"required"`
	LocationID      uint       `json:"location_id" binding:"required"`
	BatchNumber     string     `json:"batch_number" binding:"required"`
	LotNumber       string     `json:"lot_number"`
	SerialNumber    string     `json:"serial_number"`
	Quantity        float64    `json:"quantity" binding:"required"`
	UnitCost        float64    `json:"unit_cost"`
	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	SupplierID      *uint      `json:"supplier_id,omitempty"`
	Notes           string     `json:"notes"`
}

// CreateBatch creates a batch and records the receive movement that stocks
// it, in one transaction
func (s *Service) CreateBatch(req *CreateBatchRequest, userID uint) (*StockBatch, error) {
	if req.Quantity <= 0 {
		return nil, apperr.NewValidation("quantity", "quantity must be positive")
	}

	var batch *StockBatch
	err := s.WithRetry("create batch", func(tx *gorm.DB) error {
		b := &StockBatch{
			ProductID:       req.ProductID,
			LocationID:      req.LocationID,
			BatchNumber:     req.BatchNumber,
			LotNumber:       req.LotNumber,
			SerialNumber:    req.SerialNumber,
			InitialQuantity: req.Quantity,
			CurrentQuantity: req.Quantity,
			UnitCost:        req.UnitCost,
			ManufactureDate: req.ManufactureDate,
			ExpiryDate:      req.ExpiryDate,
			ReceivedDate:    time.Now().UTC(),
			SupplierID:      req.SupplierID,
			Status:          BatchStatusAvailable,
			Notes:           req.Notes,
		}
		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}

		unitCost := req.UnitCost
		moveReq := &RecordMovementRequest{
			ProductID:     req.ProductID,
			MovementType:  MovementReceive,
			Quantity:      req.Quantity,
			ToLocationID:  &req.LocationID,
			BatchID:       &b.ID,
			UnitCost:      &unitCost,
			ReferenceType: "batch",
			ReferenceID:   &b.ID,
			Reason:        "manual batch intake",
		}
		if _, err := s.ApplyMovement(tx, moveReq, userID); err != nil {
			return err
		}

		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// GetBatch retrieves a batch by ID
func (s *Service) GetBatch(id uint) (*StockBatch, error) {
	var batch StockBatch
	if err := s.db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("batch", id)
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	return &batch, nil
}

// ListConsumableBatches returns the batches a picker should draw from for a
// product at a location, in FEFO order: earliest expiry first, undated
// batches last, ties broken by earliest received. The ordering is advisory;
// the ledger accepts movements against any batch the caller names.
func (s *Service) ListConsumableBatches(productID, locationID uint) ([]StockBatch, error) {
	var batches []StockBatch
	err := s.db.
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Where("status IN ?", []BatchStatus{BatchStatusAvailable, BatchStatusLow}).
		Where("current_quantity > 0").
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, received_date ASC").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

// ListBatches returns all batches for a product at a location, FEFO ordered
func (s *Service) ListBatches(productID, locationID uint) ([]StockBatch, error) {
	var batches []StockBatch
	err := s.db.
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, received_date ASC").
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

// ReclassifyExpiredBatches marks batches past their expiry date that still
// hold quantity. Housekeeping, idempotent, never part of a movement
// transaction; disposal of the expired stock is a separate "expired"
// movement recorded by staff.
func (s *Service) ReclassifyExpiredBatches() (int64, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	result := s.db.Model(&StockBatch{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", today).
		Where("current_quantity > 0").
		Where("status IN ?", []BatchStatus{BatchStatusAvailable, BatchStatusLow}).
		Update("status", BatchStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reclassify expired batches: %w", result.Error)
	}

	return result.RowsAffected, nil
}
