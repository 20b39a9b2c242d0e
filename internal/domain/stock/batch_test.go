// internal/domain/stock/batch_test.go
package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
)

func TestCreateBatchRecordsReceiveMovement(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, testConfig())
	locID := seedLocation(t, db, "WH-01")

	expiry := time.Now().UTC().AddDate(0, 6, 0)
	batch, err := svc.CreateBatch(&CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-2026-001",
		LotNumber:   "LOT-9",
		Quantity:    50,
		UnitCost:    3.20,
		ExpiryDate:  &expiry,
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, 50.0, batch.InitialQuantity)
	assert.Equal(t, 50.0, batch.CurrentQuantity)
	assert.Equal(t, BatchStatusAvailable, batch.Status)

	// The intake stocked the level through the ledger
	level, err := svc.GetStockLevel(1, locID)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 50.0, level.Quantity)

	movements, err := svc.ListMovements(1, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementReceive, movements[0].MovementType)
	assert.Equal(t, "batch", movements[0].ReferenceType)
	require.NotNil(t, movements[0].BatchID)
	assert.Equal(t, batch.ID, *movements[0].BatchID)
}

func TestCreateBatchRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, testConfig())
	locID := seedLocation(t, db, "WH-01")

	_, err := svc.CreateBatch(&CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-1",
		Quantity:    0,
	}, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestListConsumableBatchesFEFO(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, testConfig())
	locID := seedLocation(t, db, "WH-01")

	now := time.Now().UTC()
	soon := now.AddDate(0, 1, 0)
	later := now.AddDate(0, 8, 0)

	mk := func(number string, expiry *time.Time, qty float64) *StockBatch {
		t.Helper()
		b, err := svc.CreateBatch(&CreateBatchRequest{
			ProductID:   1,
			LocationID:  locID,
			BatchNumber: number,
			Quantity:    qty,
			ExpiryDate:  expiry,
		}, 1)
		require.NoError(t, err)
		return b
	}

	mk("B-LATER", &later, 10)
	mk("B-UNDATED", nil, 10)
	mk("B-SOON", &soon, 10)
	depleted := mk("B-DEPLETED", &soon, 5)

	// Deplete one batch so it drops out of the pick list
	_, err := svc.RecordMovement(&RecordMovementRequest{
		ProductID:      1,
		MovementType:   MovementSale,
		Quantity:       5,
		FromLocationID: &locID,
		BatchID:        &depleted.ID,
	}, 1)
	require.NoError(t, err)

	batches, err := svc.ListConsumableBatches(1, locID)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// Earliest expiry first, undated last
	assert.Equal(t, "B-SOON", batches[0].BatchNumber)
	assert.Equal(t, "B-LATER", batches[1].BatchNumber)
	assert.Equal(t, "B-UNDATED", batches[2].BatchNumber)
}

func TestReclassifyExpiredBatches(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, testConfig())
	locID := seedLocation(t, db, "WH-01")

	past := time.Now().UTC().AddDate(0, 0, -3)
	future := time.Now().UTC().AddDate(0, 3, 0)

	expired, err := svc.CreateBatch(&CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-EXPIRED",
		Quantity:    20,
		ExpiryDate:  &past,
	}, 1)
	require.NoError(t, err)

	fresh, err := svc.CreateBatch(&CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-FRESH",
		Quantity:    20,
		ExpiryDate:  &future,
	}, 1)
	require.NoError(t, err)

	undated, err := svc.CreateBatch(&CreateBatchRequest{
		ProductID:   1,
		LocationID:  locID,
		BatchNumber: "B-UNDATED",
		Quantity:    20,
	}, 1)
	require.NoError(t, err)

	reclassified, err := svc.ReclassifyExpiredBatches()
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclassified)

	b, err := svc.GetBatch(expired.ID)
	require.NoError(t, err)
	assert.Equal(t, BatchStatusExpired, b.Status)
	// Reclassification never touches quantities; disposal is a separate
	// movement
	assert.Equal(t, 20.0, b.CurrentQuantity)

	for _, id := range []uint{fresh.ID, undated.ID} {
		b, err := svc.GetBatch(id)
		require.NoError(t, err)
		assert.Equal(t, BatchStatusAvailable, b.Status)
	}

	// A second sweep finds nothing new
	again, err := svc.ReclassifyExpiredBatches()
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestBatchExpiryHelpers(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 14)

	expired := StockBatch{ExpiryDate: &past}
	assert.True(t, expired.IsExpired(now))

	fresh := StockBatch{ExpiryDate: &future}
	assert.False(t, fresh.IsExpired(now))
	days := fresh.DaysUntilExpiry(now)
	require.NotNil(t, days)
	assert.Equal(t, 14, *days)

	undated := StockBatch{}
	assert.False(t, undated.IsExpired(now))
	assert.Nil(t, undated.DaysUntilExpiry(now))
}
