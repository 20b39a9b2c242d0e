// internal/domain/stock/entity.go
package stock

import (
	"time"

	"github.com/your-org/inventory-ledger/internal/domain/location"
)

// MovementType identifies the cause of a quantity change. Direction is
// implied by the type; the quantity on a movement is always positive.
type MovementType string

const (
	// Inbound
	MovementReceive        MovementType = "receive"
	MovementReturnCustomer MovementType = "return_customer"
	MovementTransferIn     MovementType = "transfer_in"
	MovementAdjustmentAdd  MovementType = "adjustment_add"
	// Outbound
	MovementSale             MovementType = "sale"
	MovementDispense         MovementType = "dispense"
	MovementReturnSupplier   MovementType = "return_supplier"
	MovementTransferOut      MovementType = "transfer_out"
	MovementAdjustmentRemove MovementType = "adjustment_remove"
	MovementExpired          MovementType = "expired"
	MovementDamaged          MovementType = "damaged"
	MovementLoss             MovementType = "loss"
	MovementSample           MovementType = "sample"
)

var inboundMovementTypes = map[MovementType]bool{
	MovementReceive:        true,
	MovementReturnCustomer: true,
	MovementTransferIn:     true,
	MovementAdjustmentAdd:  true,
}

var outboundMovementTypes = map[MovementType]bool{
	MovementSale:             true,
	MovementDispense:         true,
	MovementReturnSupplier:   true,
	MovementTransferOut:      true,
	MovementAdjustmentRemove: true,
	MovementExpired:          true,
	MovementDamaged:          true,
	MovementLoss:             true,
	MovementSample:           true,
}

// IsInbound reports whether t increases stock at a destination
func (t MovementType) IsInbound() bool {
	return inboundMovementTypes[t]
}

// IsOutbound reports whether t decreases stock at a source
func (t MovementType) IsOutbound() bool {
	return outboundMovementTypes[t]
}

// IsValid reports whether t is a recognized movement type
func (t MovementType) IsValid() bool {
	return t.IsInbound() || t.IsOutbound()
}

// BatchStatus is the stored lifecycle state of a batch
type BatchStatus string

const (
	BatchStatusAvailable BatchStatus = "available"
	BatchStatusLow       BatchStatus = "low"
	BatchStatusDepleted  BatchStatus = "depleted"
	BatchStatusExpired   BatchStatus = "expired"
	BatchStatusRecalled  BatchStatus = "recalled"
	BatchStatusDamaged   BatchStatus = "damaged"
)

// StockLevel is the authoritative on-hand quantity for a product at a
// location. Rows are created lazily by the first movement touching the pair
// and never deleted; a zero-quantity row is evidence of having stocked the
// item. Only the movement ledger writes these rows.
type StockLevel struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ProductID        uint       `gorm:"not null;uniqueIndex:idx_stock_levels_product_location" json:"product_id"`
	LocationID       uint       `gorm:"not null;uniqueIndex:idx_stock_levels_product_location" json:"location_id"`
	Quantity         float64    `gorm:"type:decimal(10,2);not null;default:0" json:"quantity"`
	ReservedQuantity float64    `gorm:"type:decimal(10,2);not null;default:0" json:"reserved_quantity"`
	MinLevel         *float64   `gorm:"type:decimal(10,2)" json:"min_level,omitempty"`
	ReorderQuantity  *float64   `gorm:"type:decimal(10,2)" json:"reorder_quantity,omitempty"`
	LastCounted      *time.Time `json:"last_counted,omitempty"`
	LastMovement     *time.Time `json:"last_movement,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relationships
	Location location.Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// AvailableQuantity is the portion not reserved for pending orders
func (sl *StockLevel) AvailableQuantity() float64 {
	return sl.Quantity - sl.ReservedQuantity
}

// StockBatch is an expiry-dated lot of a product at a location.
// InitialQuantity is immutable once set; CurrentQuantity only decreases,
// through outbound movements.
type StockBatch struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	ProductID       uint        `gorm:"not null;index" json:"product_id"`
	LocationID      uint        `gorm:"not null;index" json:"location_id"`
	BatchNumber     string      `gorm:"not null;size:100" json:"batch_number"`
	LotNumber       string      `gorm:"size:100" json:"lot_number"`
	SerialNumber    string      `gorm:"size:100" json:"serial_number"`
	InitialQuantity float64     `gorm:"type:decimal(10,2);not null" json:"initial_quantity"`
	CurrentQuantity float64     `gorm:"type:decimal(10,2);not null" json:"current_quantity"`
	UnitCost        float64     `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	ManufactureDate *time.Time  `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time  `json:"expiry_date,omitempty"`
	ReceivedDate    time.Time   `gorm:"not null" json:"received_date"`
	SupplierID      *uint       `gorm:"index" json:"supplier_id,omitempty"`
	PurchaseOrderID *uint       `gorm:"index" json:"purchase_order_id,omitempty"`
	Status          BatchStatus `gorm:"not null;default:'available';size:20" json:"status"`
	Notes           string      `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`

	// Relationships
	Location location.Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// IsExpired reports whether the batch's expiry date is before today.
// Purely derived; it does not look at or change the stored status.
func (b *StockBatch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	return b.ExpiryDate.Before(today)
}

// DaysUntilExpiry returns days until expiry, negative when past, nil when
// the batch carries no expiry date.
func (b *StockBatch) DaysUntilExpiry(now time.Time) *int {
	if b.ExpiryDate == nil {
		return nil
	}
	days := int(b.ExpiryDate.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
	return &days
}

// StockMovement is the append-only record of a single quantity change.
// Corrections are made by recording a compensating movement, never by
// editing history.
type StockMovement struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ProductID      uint         `gorm:"not null;index" json:"product_id"`
	BatchID        *uint        `gorm:"index" json:"batch_id,omitempty"`
	MovementType   MovementType `gorm:"not null;size:20;index" json:"movement_type"`
	FromLocationID *uint        `gorm:"index" json:"from_location_id,omitempty"`
	ToLocationID   *uint        `gorm:"index" json:"to_location_id,omitempty"`
	Quantity       float64      `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitCost       *float64     `gorm:"type:decimal(10,2)" json:"unit_cost,omitempty"`
	ReferenceType  string       `gorm:"size:50" json:"reference_type"`
	ReferenceID    *uint        `json:"reference_id,omitempty"`
	Reason         string       `gorm:"type:text" json:"reason"`
	RecordedBy     uint         `gorm:"index" json:"recorded_by"`
	CreatedAt      time.Time    `json:"created_at"`

	// Relationships
	Batch *StockBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
}
