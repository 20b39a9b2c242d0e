// internal/domain/location/entity.go
package location

import (
	"time"
)

// LocationType classifies a storage location
type LocationType string

const (
	LocationTypeStore        LocationType = "store"        // Retail floor
	LocationTypeWarehouse    LocationType = "warehouse"    // Backstock and bulk storage
	LocationTypeRefrigerated LocationType = "refrigerated" // Temperature-controlled
	LocationTypeClinic       LocationType = "clinic"       // Clinical supplies
	LocationTypeControlled   LocationType = "controlled"   // Restricted-access storage
)

// Location represents a physical storage location.
// Locations are created by administrators and never deleted while referenced;
// retiring one is done by clearing IsActive.
type Location struct {
	ID                          uint         `gorm:"primaryKey" json:"id"`
	Name                        string       `gorm:"not null;size:100" json:"name"`
	Code                        string       `gorm:"uniqueIndex;not null;size:20" json:"code"`
	Description                 string       `gorm:"type:text" json:"description"`
	LocationType                LocationType `gorm:"not null;default:'store';size:20" json:"location_type"`
	RequiresTemperatureControl  bool         `gorm:"default:false" json:"requires_temperature_control"`
	RequiresRestrictedAccess    bool         `gorm:"default:false" json:"requires_restricted_access"`
	IsActive                    bool         `gorm:"default:true" json:"is_active"`
	CreatedAt                   time.Time    `json:"created_at"`
	UpdatedAt                   time.Time    `json:"updated_at"`
}

// ValidTypes lists the recognized location types
func ValidTypes() []LocationType {
	return []LocationType{
		LocationTypeStore,
		LocationTypeWarehouse,
		LocationTypeRefrigerated,
		LocationTypeClinic,
		LocationTypeControlled,
	}
}

// IsValidType checks whether t is a recognized location type
func IsValidType(t LocationType) bool {
	for _, v := range ValidTypes() {
		if v == t {
			return true
		}
	}
	return false
}
