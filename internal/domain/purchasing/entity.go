// internal/domain/purchasing/entity.go
package purchasing

import (
	"time"

	"github.com/your-org/inventory-ledger/internal/domain/location"
)

// OrderStatus walks draft -> submitted -> confirmed -> shipped ->
// partial|received, with cancelled reachable from any pre-received state
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// Supplier is a product vendor
type Supplier struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:200" json:"name"`
	Code         string    `gorm:"size:50" json:"code"`
	ContactName  string    `gorm:"size:200" json:"contact_name"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
	PaymentTerms string    `gorm:"size:50" json:"payment_terms"` // net30, prepaid, etc.
	LeadTimeDays *int      `json:"lead_time_days,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	IsPreferred  bool      `gorm:"default:false" json:"is_preferred"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// PurchaseOrder is an order to a supplier. Its status past "shipped" is a
// pure aggregate of its lines' received-vs-ordered quantities.
type PurchaseOrder struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	PONumber           string      `gorm:"uniqueIndex;not null;size:50" json:"po_number"`
	SupplierID         uint        `gorm:"not null;index" json:"supplier_id"`
	Status             OrderStatus `gorm:"not null;default:'draft';size:20;index" json:"status"`
	OrderDate          *time.Time  `json:"order_date,omitempty"`
	ExpectedDate       *time.Time  `json:"expected_date,omitempty"`
	ReceivedDate       *time.Time  `json:"received_date,omitempty"`
	Subtotal           float64     `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	Tax                float64     `gorm:"type:decimal(15,2);not null;default:0" json:"tax"`
	Shipping           float64     `gorm:"type:decimal(15,2);not null;default:0" json:"shipping"`
	Total              float64     `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	DeliveryLocationID *uint       `gorm:"index" json:"delivery_location_id,omitempty"`
	ShippingAddress    string      `gorm:"type:text" json:"shipping_address"`
	Notes              string      `gorm:"type:text" json:"notes"`
	InternalNotes      string      `gorm:"type:text" json:"internal_notes"`
	CreatedBy          uint        `gorm:"index" json:"created_by"`
	ApprovedBy         *uint       `json:"approved_by,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	// Relationships
	Supplier         Supplier            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	DeliveryLocation *location.Location  `gorm:"foreignKey:DeliveryLocationID" json:"delivery_location,omitempty"`
	Lines            []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID" json:"lines,omitempty"`
}

// PurchaseOrderLine is one product on a purchase order. QuantityOrdered is
// immutable after creation; QuantityReceived only grows, and never beyond
// QuantityOrdered.
type PurchaseOrderLine struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PurchaseOrderID  uint      `gorm:"not null;index" json:"purchase_order_id"`
	ProductID        uint      `gorm:"not null;index" json:"product_id"`
	QuantityOrdered  float64   `gorm:"type:decimal(10,2);not null" json:"quantity_ordered"`
	QuantityReceived float64   `gorm:"type:decimal(10,2);not null;default:0" json:"quantity_received"`
	UnitCost         float64   `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	LineTotal        float64   `gorm:"type:decimal(15,2);not null" json:"line_total"`
	SupplierSKU      string    `gorm:"size:100" json:"supplier_sku"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// RemainingQuantity is what is still expected from the supplier
func (l *PurchaseOrderLine) RemainingQuantity() float64 {
	return l.QuantityOrdered - l.QuantityReceived
}

// ReorderRule is pure configuration consumed read-only by the reorder
// evaluator. A nil location scopes the rule to the product's total stock
// across all locations.
type ReorderRule struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ProductID           uint      `gorm:"not null;uniqueIndex:idx_reorder_rules_product_location" json:"product_id"`
	LocationID          *uint     `gorm:"uniqueIndex:idx_reorder_rules_product_location" json:"location_id,omitempty"`
	MinLevel            float64   `gorm:"type:decimal(10,2);not null" json:"min_level"`
	ReorderPoint        float64   `gorm:"type:decimal(10,2);not null" json:"reorder_point"`
	ReorderQuantity     float64   `gorm:"type:decimal(10,2);not null" json:"reorder_quantity"`
	MaxLevel            *float64  `gorm:"type:decimal(10,2)" json:"max_level,omitempty"`
	PreferredSupplierID *uint     `json:"preferred_supplier_id,omitempty"`
	AutoCreatePO        bool      `gorm:"default:false" json:"auto_create_po"`
	IsActive            bool      `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
