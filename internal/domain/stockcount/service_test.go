// internal/domain/stockcount/service_test.go
package stockcount

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/location"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&location.Location{},
		&stock.StockLevel{},
		&stock.StockBatch{},
		&stock.StockMovement{},
		&StockCount{},
		&StockCountLine{},
	))

	return db
}

func newTestService(t *testing.T) (*Service, *stock.Service, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			BatchLowFraction: 0.10,
			MaxWriteRetries:  3,
			PONumberPrefix:   "PO",
			ReorderCacheTTL:  5 * time.Minute,
		},
	}
	ledger := stock.NewService(db, cfg)
	return NewService(db, cfg, ledger), ledger, db
}

func seedLocation(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()

	loc := location.Location{
		Name:         "Location " + code,
		Code:         code,
		LocationType: location.LocationTypeWarehouse,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&loc).Error)
	return loc.ID
}

func receive(t *testing.T, ledger *stock.Service, productID, locID uint, qty float64) {
	t.Helper()
	_, err := ledger.RecordMovement(&stock.RecordMovementRequest{
		ProductID:    productID,
		MovementType: stock.MovementReceive,
		Quantity:     qty,
		ToLocationID: &locID,
	}, 1)
	require.NoError(t, err)
}

func TestStartCountSnapshotsPositiveLevels(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")
	otherID := seedLocation(t, db, "STORE")

	receive(t, ledger, 1, locID, 100)
	receive(t, ledger, 2, locID, 30)
	receive(t, ledger, 3, otherID, 50) // different location, excluded

	// Product 4 touched the location but sits at zero, excluded
	receive(t, ledger, 4, locID, 5)
	_, err := ledger.RecordMovement(&stock.RecordMovementRequest{
		ProductID:      4,
		MovementType:   stock.MovementSale,
		Quantity:       5,
		FromLocationID: &locID,
	}, 1)
	require.NoError(t, err)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 3)
	require.NoError(t, err)
	assert.Equal(t, CountStatusDraft, count.Status)
	assert.Equal(t, CountTypeFull, count.CountType)
	assert.Equal(t, 2, count.TotalProducts)
	assert.Equal(t, uint(3), count.CountedBy)

	loaded, err := svc.GetCount(count.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, uint(1), loaded.Lines[0].ProductID)
	assert.Equal(t, 100.0, loaded.Lines[0].SystemQuantity)
	assert.Equal(t, uint(2), loaded.Lines[1].ProductID)
	assert.Equal(t, 30.0, loaded.Lines[1].SystemQuantity)
}

func TestStartCountUnknownLocation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartCount(&StartCountRequest{LocationID: 99}, 1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestEnterCountValidation(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")
	receive(t, ledger, 1, locID, 100)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 1)
	require.NoError(t, err)
	loaded, err := svc.GetCount(count.ID)
	require.NoError(t, err)
	lineID := loaded.Lines[0].ID

	_, err = svc.EnterCount(count.ID, lineID, -1, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.EnterCount(count.ID, 999, 50, "")
	assert.True(t, apperr.IsNotFound(err))

	// Entering counts does not touch stock
	line, err := svc.EnterCount(count.ID, lineID, 92, "shelf damage")
	require.NoError(t, err)
	require.NotNil(t, line.CountedQuantity)
	assert.Equal(t, 92.0, *line.CountedQuantity)

	level, err := ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, level.Quantity)
}

func TestPostAdjustmentsReconcilesLedger(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")

	// Stock product 1 through a batch so the discrepancy can be valued
	_, err := ledger.CreateBatch(&stock.CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-1",
		Quantity:    100,
		UnitCost:    2.50,
	}, 1)
	require.NoError(t, err)
	receive(t, ledger, 2, locID, 40)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 3)
	require.NoError(t, err)
	loaded, err := svc.GetCount(count.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)

	// Product 1 counted short by 8, product 2 counted over by 3
	_, err = svc.EnterCount(count.ID, loaded.Lines[0].ID, 92, "breakage")
	require.NoError(t, err)
	_, err = svc.EnterCount(count.ID, loaded.Lines[1].ID, 43, "")
	require.NoError(t, err)

	_, err = svc.SubmitCount(count.ID)
	require.NoError(t, err)

	posted, err := svc.PostAdjustments(count.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, CountStatusPosted, posted.Status)
	assert.Equal(t, 2, posted.ProductsCounted)
	assert.Equal(t, 2, posted.DiscrepanciesFound)
	// -8 units at the 2.50 batch cost; product 2 has no batch so values at 0
	assert.Equal(t, -20.0, posted.DiscrepancyValue)
	require.NotNil(t, posted.ApprovedBy)
	assert.Equal(t, uint(7), *posted.ApprovedBy)

	// The ledger now matches the physical count
	level1, err := ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	assert.Equal(t, 92.0, level1.Quantity)
	assert.NotNil(t, level1.LastCounted)

	level2, err := ledger.GetStockLevel(2, locID)
	require.NoError(t, err)
	assert.Equal(t, 43.0, level2.Quantity)

	// One compensating movement per discrepancy, tied back to the count
	movements1, err := ledger.ListMovements(1, 0)
	require.NoError(t, err)
	require.Len(t, movements1, 2) // receive + adjustment
	adj := movements1[0]
	assert.Equal(t, stock.MovementAdjustmentRemove, adj.MovementType)
	assert.Equal(t, 8.0, adj.Quantity)
	assert.Equal(t, "stock_count", adj.ReferenceType)
	require.NotNil(t, adj.ReferenceID)
	assert.Equal(t, count.ID, *adj.ReferenceID)
	assert.Equal(t, "breakage", adj.Reason)

	movements2, err := ledger.ListMovements(2, 0)
	require.NoError(t, err)
	require.Len(t, movements2, 2)
	assert.Equal(t, stock.MovementAdjustmentAdd, movements2[0].MovementType)
	assert.Equal(t, 3.0, movements2[0].Quantity)
}

func TestPostAdjustmentsSkipsUncountedLines(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")

	receive(t, ledger, 1, locID, 100)
	receive(t, ledger, 2, locID, 40)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 1)
	require.NoError(t, err)
	loaded, err := svc.GetCount(count.ID)
	require.NoError(t, err)

	// Only product 1 gets counted, and it matches the system exactly
	_, err = svc.EnterCount(count.ID, loaded.Lines[0].ID, 100, "")
	require.NoError(t, err)

	_, err = svc.SubmitCount(count.ID)
	require.NoError(t, err)

	posted, err := svc.PostAdjustments(count.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, posted.ProductsCounted)
	assert.Zero(t, posted.DiscrepanciesFound)
	assert.Zero(t, posted.DiscrepancyValue)

	// No adjustments were recorded for either product
	for _, productID := range []uint{1, 2} {
		movements, err := ledger.ListMovements(productID, 0)
		require.NoError(t, err)
		assert.Len(t, movements, 1) // just the receive
	}

	// Only the counted product's level carries the count timestamp
	level1, err := ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	assert.NotNil(t, level1.LastCounted)

	level2, err := ledger.GetStockLevel(2, locID)
	require.NoError(t, err)
	assert.Nil(t, level2.LastCounted)
}

func TestPostAdjustmentsRequiresSubmission(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")
	receive(t, ledger, 1, locID, 10)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 1)
	require.NoError(t, err)

	// Draft counts cannot post
	_, err = svc.PostAdjustments(count.ID, 1)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.SubmitCount(count.ID)
	require.NoError(t, err)
	_, err = svc.PostAdjustments(count.ID, 1)
	require.NoError(t, err)

	// Posting again is rejected, so adjustments never double
	_, err = svc.PostAdjustments(count.ID, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestCountTransitions(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")
	receive(t, ledger, 1, locID, 10)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 1)
	require.NoError(t, err)

	// Approval requires submission first
	_, err = svc.ApproveCount(count.ID)
	assert.True(t, apperr.IsValidation(err))

	submitted, err := svc.SubmitCount(count.ID)
	require.NoError(t, err)
	assert.Equal(t, CountStatusSubmitted, submitted.Status)

	approved, err := svc.ApproveCount(count.ID)
	require.NoError(t, err)
	assert.Equal(t, CountStatusApproved, approved.Status)

	cancelled, err := svc.CancelCount(count.ID)
	require.NoError(t, err)
	assert.Equal(t, CountStatusCancelled, cancelled.Status)

	// Terminal states reject everything
	_, err = svc.SubmitCount(count.ID)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.CancelCount(count.ID)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.PostAdjustments(count.ID, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestEnterCountAfterSubmission(t *testing.T) {
	svc, ledger, db := newTestService(t)
	locID := seedLocation(t, db, "WH-01")
	receive(t, ledger, 1, locID, 10)

	count, err := svc.StartCount(&StartCountRequest{LocationID: locID}, 1)
	require.NoError(t, err)
	loaded, err := svc.GetCount(count.ID)
	require.NoError(t, err)
	lineID := loaded.Lines[0].ID

	// Recounting during review is allowed
	_, err = svc.SubmitCount(count.ID)
	require.NoError(t, err)
	_, err = svc.EnterCount(count.ID, lineID, 9, "recount")
	require.NoError(t, err)

	// But not once the count is posted
	_, err = svc.PostAdjustments(count.ID, 1)
	require.NoError(t, err)
	_, err = svc.EnterCount(count.ID, lineID, 8, "")
	assert.True(t, apperr.IsValidation(err))
}

func TestListCountsByLocation(t *testing.T) {
	svc, ledger, db := newTestService(t)
	aID := seedLocation(t, db, "WH-01")
	bID := seedLocation(t, db, "STORE")
	receive(t, ledger, 1, aID, 10)
	receive(t, ledger, 1, bID, 10)

	_, err := svc.StartCount(&StartCountRequest{LocationID: aID}, 1)
	require.NoError(t, err)
	_, err = svc.StartCount(&StartCountRequest{LocationID: bID}, 1)
	require.NoError(t, err)

	all, err := svc.ListCounts(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.ListCounts(&aID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, aID, scoped[0].LocationID)
}
