// internal/domain/location/service_test.go
package location

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Location{}))
	return NewService(db, &config.Config{})
}

func TestCreateLocation(t *testing.T) {
	svc := newTestService(t)

	loc, err := svc.CreateLocation(&CreateLocationRequest{
		Name:                       "Refrigerated Storage",
		Code:                       "FRIDGE",
		LocationType:               LocationTypeRefrigerated,
		RequiresTemperatureControl: true,
	})
	require.NoError(t, err)
	assert.Equal(t, LocationTypeRefrigerated, loc.LocationType)
	assert.True(t, loc.RequiresTemperatureControl)
	assert.True(t, loc.IsActive)
}

func TestCreateLocationDefaultsToStore(t *testing.T) {
	svc := newTestService(t)

	loc, err := svc.CreateLocation(&CreateLocationRequest{
		Name: "Front Shelf",
		Code: "FRONT",
	})
	require.NoError(t, err)
	assert.Equal(t, LocationTypeStore, loc.LocationType)
}

func TestCreateLocationRejectsUnknownType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateLocation(&CreateLocationRequest{
		Name:         "Mystery",
		Code:         "MYST",
		LocationType: "submarine",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateLocationRejectsDuplicateCode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateLocation(&CreateLocationRequest{Name: "A", Code: "WH-01"})
	require.NoError(t, err)

	_, err = svc.CreateLocation(&CreateLocationRequest{Name: "B", Code: "WH-01"})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateLocationPartial(t *testing.T) {
	svc := newTestService(t)

	loc, err := svc.CreateLocation(&CreateLocationRequest{Name: "Back Room", Code: "BACK"})
	require.NoError(t, err)

	newName := "Back Warehouse"
	updated, err := svc.UpdateLocation(loc.ID, &UpdateLocationRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Back Warehouse", updated.Name)
	// Untouched fields survive
	assert.Equal(t, LocationTypeStore, updated.LocationType)

	badType := LocationType("submarine")
	_, err = svc.UpdateLocation(loc.ID, &UpdateLocationRequest{LocationType: &badType})
	assert.True(t, apperr.IsValidation(err))
}

func TestDeactivateLocationHidesFromListing(t *testing.T) {
	svc := newTestService(t)

	loc, err := svc.CreateLocation(&CreateLocationRequest{Name: "Old Shed", Code: "SHED"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateLocation(loc.ID))

	locations, err := svc.GetLocations()
	require.NoError(t, err)
	assert.Empty(t, locations)

	// Deactivated, not deleted: direct lookups still work
	still, err := svc.GetLocation(loc.ID)
	require.NoError(t, err)
	assert.False(t, still.IsActive)
}

func TestGetLocationNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetLocation(42)
	assert.True(t, apperr.IsNotFound(err))
}
