// internal/domain/location/service.go
package location

import (
	"fmt"

	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles the location registry
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new location service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateLocationRequest represents location creation data
type CreateLocationRequest struct {
	Name                       string       `json:"name" binding:"required"`
	Code                       string       `json:"code" binding:"required"`
	Description                string       `json:"description"`
	LocationType               LocationType `json:"location_type"`
	RequiresTemperatureControl bool         `json:"requires_temperature_control"`
	RequiresRestrictedAccess   bool         `json:"requires_restricted_access"`
}

// UpdateLocationRequest represents mutable location attributes
type UpdateLocationRequest struct {
	Name                       *string       `json:"name"`
	Description                *string       `json:"description"`
	LocationType               *LocationType `json:"location_type"`
	RequiresTemperatureControl *bool         `json:"requires_temperature_control"`
	RequiresRestrictedAccess   *bool         `json:"requires_restricted_access"`
}

// CreateLocation creates a new storage location
func (s *Service) CreateLocation(req *CreateLocationRequest) (*Location, error) {
	locType := req.LocationType
	if locType == "" {
		locType = LocationTypeStore
	}
	if !IsValidType(locType) {
		return nil, apperr.NewValidation("location_type", fmt.Sprintf("unknown location type '%s'", locType))
	}

	// Check if code already exists
	var existing Location
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, apperr.NewValidation("code", fmt.Sprintf("location with code '%s' already exists", req.Code))
	}

	loc := &Location{
		Name:                       req.Name,
		Code:                       req.Code,
		Description:                req.Description,
		LocationType:               locType,
		RequiresTemperatureControl: req.RequiresTemperatureControl,
		RequiresRestrictedAccess:   req.RequiresRestrictedAccess,
		IsActive:                   true,
	}

	if err := s.db.Create(loc).Error; err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	return loc, nil
}

// GetLocation retrieves a location by ID
func (s *Service) GetLocation(id uint) (*Location, error) {
	var loc Location
	if err := s.db.First(&loc, id).Error; err != nil {
		return nil, apperr.NewNotFound("location", id)
	}
	return &loc, nil
}

// GetLocations retrieves all active locations ordered by name
func (s *Service) GetLocations() ([]Location, error) {
	var locations []Location
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve locations: %w", err)
	}
	return locations, nil
}

// UpdateLocation applies partial updates to a location
func (s *Service) UpdateLocation(id uint, req *UpdateLocationRequest) (*Location, error) {
	loc, err := s.GetLocation(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		loc.Name = *req.Name
	}
	if req.Description != nil {
		loc.Description = *req.Description
	}
	if req.LocationType != nil {
		if !IsValidType(*req.LocationType) {
			return nil, apperr.NewValidation("location_type", fmt.Sprintf("unknown location type '%s'", *req.LocationType))
		}
		loc.LocationType = *req.LocationType
	}
	if req.RequiresTemperatureControl != nil {
		loc.RequiresTemperatureControl = *req.RequiresTemperatureControl
	}
	if req.RequiresRestrictedAccess != nil {
		loc.RequiresRestrictedAccess = *req.RequiresRestrictedAccess
	}

	if err := s.db.Save(loc).Error; err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return loc, nil
}

// DeactivateLocation retires a location. Stock history referencing it is kept.
func (s *Service) DeactivateLocation(id uint) error {
	loc, err := s.GetLocation(id)
	if err != nil {
		return err
	}

	loc.IsActive = false
	if err := s.db.Save(loc).Error; err != nil {
		return fmt.Errorf("failed to deactivate location: %w", err)
	}

	return nil
}
