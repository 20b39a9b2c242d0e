// internal/domain/stock/ledger.go
package stock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/location"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the movement ledger. It is the only writer of stock levels and
// batch quantities; every quantity change enters the system as a movement
// recorded here.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new ledger service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// RecordMovementRequest represents a quantity-changing event
type RecordMovementRequest struct {
	ProductID      uint         `json:"product_id" binding:"required"`
	MovementType   MovementType `json:"movement_type" binding:"required"`
	Quantity       float64      `json:"quantity" binding:"required"`
	FromLocationID *uint        `json:"from_location_id,omitempty"`
	ToLocationID   *uint        `json:"to_location_id,omitempty"`
	BatchID        *uint        `json:"batch_id,omitempty"`
	UnitCost       *float64     `json:"unit_cost,omitempty"`
	ReferenceType  string       `json:"reference_type,omitempty"`
	ReferenceID    *uint        `json:"reference_id,omitempty"`
	Reason         string       `json:"reason,omitempty"`
}

// Validate checks the request before any write happens
func (req *RecordMovementRequest) Validate() error {
	if !req.MovementType.IsValid() {
		return apperr.NewValidation("movement_type", fmt.Sprintf("unknown movement type '%s'", req.MovementType))
	}
	if req.Quantity <= 0 {
		return apperr.NewValidation("quantity", "quantity must be positive")
	}
	if req.MovementType.IsOutbound() && req.FromLocationID == nil {
		return apperr.NewValidation("from_location_id", fmt.Sprintf("movement type '%s' requires a source location", req.MovementType))
	}
	if req.MovementType.IsInbound() && req.ToLocationID == nil {
		return apperr.NewValidation("to_location_id", fmt.Sprintf("movement type '%s' requires a destination location", req.MovementType))
	}
	// Transfers are a single movement covering both sides
	if req.MovementType == MovementTransferOut && req.ToLocationID == nil {
		return apperr.NewValidation("to_location_id", "transfer_out requires a destination location")
	}
	return nil
}

// RecordMovement atomically inserts the movement record and applies its
// effects to the stock level rows (and batch, when referenced). Write
// conflicts are retried a bounded number of times.
func (s *Service) RecordMovement(req *RecordMovementRequest, userID uint) (*StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var movement *StockMovement
	err := s.WithRetry("record movement", func(tx *gorm.DB) error {
		m, err := s.ApplyMovement(tx, req, userID)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// ApplyMovement runs the effects of a validated movement inside the caller's
// transaction. Workflows that bundle a movement with their own writes
// (receiving, count posting) call this so everything commits together.
func (s *Service) ApplyMovement(tx *gorm.DB, req *RecordMovementRequest, userID uint) (*StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if err := s.checkLocations(tx, req); err != nil {
		return nil, err
	}

	var batch *StockBatch
	if req.BatchID != nil {
		var b StockBatch
		if err := s.forUpdate(tx).First(&b, *req.BatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NewNotFound("batch", *req.BatchID)
			}
			return nil, fmt.Errorf("failed to load batch: %w", err)
		}
		if b.ProductID != req.ProductID {
			return nil, apperr.NewValidation("batch_id", "batch belongs to a different product")
		}
		batch = &b
	}

	// Outbound: decrement the source level. The ledger does not forbid
	// driving a level negative; an over-issue shows up as negative stock and
	// is reconciled by a count.
	if req.MovementType.IsOutbound() {
		level, err := s.lockedLevel(tx, req.ProductID, *req.FromLocationID)
		if err != nil {
			return nil, err
		}
		level.Quantity -= req.Quantity
		level.LastMovement = &now
		if err := tx.Save(level).Error; err != nil {
			return nil, fmt.Errorf("failed to update stock level: %w", err)
		}

		if batch != nil {
			s.drawDownBatch(batch, req.Quantity)
			if err := tx.Save(batch).Error; err != nil {
				return nil, fmt.Errorf("failed to update batch: %w", err)
			}
		}
	}

	// Inbound: increment the destination level
	if req.MovementType.IsInbound() {
		level, err := s.lockedLevel(tx, req.ProductID, *req.ToLocationID)
		if err != nil {
			return nil, err
		}
		level.Quantity += req.Quantity
		level.LastMovement = &now
		if err := tx.Save(level).Error; err != nil {
			return nil, fmt.Errorf("failed to update stock level: %w", err)
		}
	}

	// A transfer decrements the source and credits the destination in the
	// same movement
	if req.MovementType == MovementTransferOut {
		level, err := s.lockedLevel(tx, req.ProductID, *req.ToLocationID)
		if err != nil {
			return nil, err
		}
		level.Quantity += req.Quantity
		level.LastMovement = &now
		if err := tx.Save(level).Error; err != nil {
			return nil, fmt.Errorf("failed to update stock level: %w", err)
		}
	}

	movement := &StockMovement{
		ProductID:      req.ProductID,
		BatchID:        req.BatchID,
		MovementType:   req.MovementType,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		Reason:         req.Reason,
		RecordedBy:     userID,
	}

	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	return movement, nil
}

// drawDownBatch deducts from a batch and walks its status machine. The batch
// floor-clamps at zero; status flips to low at the configured fraction of the
// initial quantity and to depleted at zero.
func (s *Service) drawDownBatch(batch *StockBatch, quantity float64) {
	batch.CurrentQuantity -= quantity
	if batch.CurrentQuantity <= 0 {
		batch.CurrentQuantity = 0
		batch.Status = BatchStatusDepleted
	} else if batch.CurrentQuantity <= batch.InitialQuantity*s.config.Ledger.BatchLowFraction {
		batch.Status = BatchStatusLow
	}
}

// checkLocations verifies every referenced location exists
func (s *Service) checkLocations(tx *gorm.DB, req *RecordMovementRequest) error {
	for _, id := range []*uint{req.FromLocationID, req.ToLocationID} {
		if id == nil {
			continue
		}
		var loc location.Location
		if err := tx.First(&loc, *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("location", *id)
			}
			return fmt.Errorf("failed to load location: %w", err)
		}
	}
	return nil
}

// lockedLevel fetches the stock level row for (product, location) under a row
// lock, creating it at zero if absent. Creation happens inside the same
// transaction as the mutating write so the lazy get-or-create cannot race.
func (s *Service) lockedLevel(tx *gorm.DB, productID, locationID uint) (*StockLevel, error) {
	var level StockLevel
	err := s.forUpdate(tx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		level = StockLevel{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   0,
		}
		// The unique index turns a create/create race into a retryable
		// conflict
		if err := tx.Create(&level).Error; err != nil {
			return nil, fmt.Errorf("failed to create stock level: %w", err)
		}
		return &level, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stock level: %w", err)
	}
	return &level, nil
}

// LockForUpdate applies a SELECT ... FOR UPDATE row lock. SQLite (used in
// tests) has no row locks; its single-writer file lock serializes writes
// instead. Workflow services reuse this for their own rows.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (s *Service) forUpdate(tx *gorm.DB) *gorm.DB {
	return LockForUpdate(tx)
}

// WithRetry runs fn in a transaction, retrying bounded times on write
// conflicts. Validation and not-found failures are never retried. After the
// last failed attempt the caller sees a ConflictError.
func (s *Service) WithRetry(operation string, fn func(tx *gorm.DB) error) error {
	maxRetries := s.config.Ledger.MaxWriteRetries
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return apperr.NewConflict(operation, maxRetries, lastErr)
}

// isRetryable classifies driver errors that indicate a concurrent write
// collision rather than a permanent failure
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if apperr.IsValidation(err) || apperr.IsNotFound(err) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"deadlock detected",
		"could not serialize access",
		"database is locked",
		"database table is locked",
		"duplicate key value",
		"unique constraint",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// READ QUERIES

// GetStockLevel returns the stock level row for a product at a location,
// or nil if the pair has never seen a movement
func (s *Service) GetStockLevel(productID, locationID uint) (*StockLevel, error) {
	var level StockLevel
	err := s.db.Where("product_id = ? AND location_id = ?", productID, locationID).First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stock level: %w", err)
	}
	return &level, nil
}

// TotalStock sums a product's quantity, across all locations or a single one
func (s *Service) TotalStock(productID uint, locationID *uint) (float64, error) {
	query := s.db.Model(&StockLevel{}).Where("product_id = ?", productID)
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var total float64
	if err := query.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum stock: %w", err)
	}
	return total, nil
}

// ListStockLevels returns every stock level row at a location
func (s *Service) ListStockLevels(locationID uint) ([]StockLevel, error) {
	var levels []StockLevel
	if err := s.db.Where("location_id = ?", locationID).Order("product_id").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	return levels, nil
}

// ListMovements returns a product's movement history, newest first
func (s *Service) ListMovements(productID uint, limit int) ([]StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var movements []StockMovement
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}
