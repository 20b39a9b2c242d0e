// internal/domain/stockcount/entity.go
package stockcount

import (
	"time"

	"github.com/your-org/inventory-ledger/internal/domain/location"
)

// CountStatus walks draft -> submitted -> approved -> posted, with
// cancelled reachable from any pre-posted state
type CountStatus string

const (
	CountStatusDraft     CountStatus = "draft"
	CountStatusSubmitted CountStatus = "submitted"
	CountStatusApproved  CountStatus = "approved"
	CountStatusPosted    CountStatus = "posted"
	CountStatusCancelled CountStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed
func (s CountStatus) IsTerminal() bool {
	return s == CountStatusPosted || s == CountStatusCancelled
}

// CountType classifies the scope of a physical count
type CountType string

const (
	CountTypeFull  CountType = "full"
	CountTypeCycle CountType = "cycle"
	CountTypeSpot  CountType = "spot"
)

// StockCount is a physical inventory count at one location. Lines snapshot
// the stock levels when the count starts; the source-of-truth levels stay
// untouched until adjustments are posted.
type StockCount struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	LocationID         uint        `gorm:"not null;index" json:"location_id"`
	CountDate          time.Time   `gorm:"not null" json:"count_date"`
	CountType          CountType   `gorm:"not null;default:'full';size:20" json:"count_type"`
	Status             CountStatus `gorm:"not null;default:'draft';size:20;index" json:"status"`
	TotalProducts      int         `gorm:"not null;default:0" json:"total_products"`
	ProductsCounted    int         `gorm:"not null;default:0" json:"products_counted"`
	DiscrepanciesFound int         `gorm:"not null;default:0" json:"discrepancies_found"`
	DiscrepancyValue   float64     `gorm:"type:decimal(15,2);not null;default:0" json:"discrepancy_value"`
	Notes              string      `gorm:"type:text" json:"notes"`
	CountedBy          uint        `gorm:"index" json:"counted_by"`
	ApprovedBy         *uint       `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time  `json:"approved_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	// Relationships
	Location location.Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Lines    []StockCountLine  `gorm:"foreignKey:StockCountID" json:"lines,omitempty"`
}

// StockCountLine is one product on a count. SystemQuantity is the immutable
// snapshot taken when the count started; Discrepancy and DiscrepancyValue
// are computed at posting.
type StockCountLine struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StockCountID     uint       `gorm:"not null;index" json:"stock_count_id"`
	ProductID        uint       `gorm:"not null;index" json:"product_id"`
	BatchID          *uint      `gorm:"index" json:"batch_id,omitempty"`
	SystemQuantity   float64    `gorm:"type:decimal(10,2);not null" json:"system_quantity"`
	CountedQuantity  *float64   `gorm:"type:decimal(10,2)" json:"counted_quantity,omitempty"`
	Discrepancy      *float64   `gorm:"type:decimal(10,2)" json:"discrepancy,omitempty"`
	DiscrepancyValue *float64   `gorm:"type:decimal(10,2)" json:"discrepancy_value,omitempty"`
	AdjustmentReason string     `gorm:"type:text" json:"adjustment_reason"`
	AdjustmentPosted bool       `gorm:"default:false" json:"adjustment_posted"`
	CountedAt        *time.Time `json:"counted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
