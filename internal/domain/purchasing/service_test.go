// internal/domain/purchasing/service_test.go
package purchasing

import (
	"fmt"
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
		&Supplier{},
		&PurchaseOrder{},
		&PurchaseOrderLine{},
		&ReorderRule{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			BatchLowFraction: 0.10,
			MaxWriteRetries:  3,
			PONumberPrefix:   "PO",
			ReorderCacheTTL:  5 * time.Minute,
		},
	}
}

func newTestService(t *testing.T) (*Service, *stock.Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	ledger := stock.NewService(db, cfg)
	return NewService(db, cfg, ledger, nil), ledger, db
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

func seedSupplier(t *testing.T, svc *Service) *Supplier {
	t.Helper()

	supplier, err := svc.CreateSupplier(&CreateSupplierRequest{
		Name: "Acme Veterinary Supply",
		Code: "ACME",
	})
	require.NoError(t, err)
	return supplier
}

func newOrderWithLine(t *testing.T, svc *Service, db *gorm.DB, quantity float64) (*PurchaseOrder, *PurchaseOrderLine, uint) {
	t.Helper()

	supplier := seedSupplier(t, svc)
	locID := seedLocation(t, db, "WH-01")

	order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{
		SupplierID:         supplier.ID,
		DeliveryLocationID: &locID,
	}, 1)
	require.NoError(t, err)

	line, err := svc.AddLine(order.ID, &AddLineRequest{
		ProductID:       1,
		QuantityOrdered: quantity,
		UnitCost:        5.00,
	})
	require.NoError(t, err)

	_, err = svc.SubmitOrder(order.ID)
	require.NoError(t, err)

	return order, line, locID
}

func TestCreatePurchaseOrderNumbering(t *testing.T) {
	svc, _, _ := newTestService(t)
	supplier := seedSupplier(t, svc)

	today := time.Now().UTC().Format("20060102")
	for i := 1; i <= 3; i++ {
		order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: supplier.ID}, 1)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PO-%s-%03d", today, i), order.PONumber)
		assert.Equal(t, OrderStatusDraft, order.Status)
	}
}

func TestCreatePurchaseOrderUnknownSupplier(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: 99}, 1)
	assert.True(t, apperr.IsNotFound(err))
}

func TestAddLineRecomputesTotals(t *testing.T) {
	svc, _, _ := newTestService(t)
	supplier := seedSupplier(t, svc)

	order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{
		SupplierID: supplier.ID,
		Tax:        10,
		Shipping:   5,
	}, 1)
	require.NoError(t, err)

	_, err = svc.AddLine(order.ID, &AddLineRequest{ProductID: 1, QuantityOrdered: 10, UnitCost: 2})
	require.NoError(t, err)
	_, err = svc.AddLine(order.ID, &AddLineRequest{ProductID: 2, QuantityOrdered: 4, UnitCost: 25})
	require.NoError(t, err)

	reloaded, err := svc.GetPurchaseOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, reloaded.Subtotal)
	assert.Equal(t, 135.0, reloaded.Total)
	assert.Len(t, reloaded.Lines, 2)
}

func TestAddLineRequiresDraft(t *testing.T) {
	svc, _, db := newTestService(t)
	order, _, _ := newOrderWithLine(t, svc, db, 100)

	_, err := svc.AddLine(order.ID, &AddLineRequest{ProductID: 2, QuantityOrdered: 5, UnitCost: 1})
	assert.True(t, apperr.IsValidation(err))
}

func TestOrderTransitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	supplier := seedSupplier(t, svc)

	order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: supplier.ID}, 1)
	require.NoError(t, err)
	assert.Nil(t, order.OrderDate)

	// Skipping a step is rejected
	_, err = svc.ConfirmOrder(order.ID)
	assert.True(t, apperr.IsValidation(err))

	submitted, err := svc.SubmitOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.OrderDate)

	confirmed, err := svc.ConfirmOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, confirmed.Status)

	shipped, err := svc.MarkOrderShipped(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, shipped.Status)

	cancelled, err := svc.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)

	// Terminal states admit nothing further
	_, err = svc.SubmitOrder(order.ID)
	assert.True(t, apperr.IsValidation(err))
	_, err = svc.CancelOrder(order.ID)
	assert.True(t, apperr.IsValidation(err))
}

func TestReceiveLineAcrossDeliveries(t *testing.T) {
	svc, ledger, db := newTestService(t)
	order, line, locID := newOrderWithLine(t, svc, db, 200)

	expiry := time.Now().UTC().AddDate(1, 0, 0)
	batch, err := svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{
		Quantity:    150,
		BatchNumber: "B-DELIVERY-1",
		ExpiryDate:  &expiry,
	}, 9)
	require.NoError(t, err)

	// The batch lands at the delivery location carrying the line's cost
	assert.Equal(t, locID, batch.LocationID)
	assert.Equal(t, 150.0, batch.CurrentQuantity)
	assert.Equal(t, 5.00, batch.UnitCost)
	require.NotNil(t, batch.PurchaseOrderID)
	assert.Equal(t, order.ID, *batch.PurchaseOrderID)

	reloaded, err := svc.GetPurchaseOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPartial, reloaded.Status)
	assert.Equal(t, 150.0, reloaded.Lines[0].QuantityReceived)
	assert.Equal(t, 50.0, reloaded.Lines[0].RemainingQuantity())

	// The receipt went through the ledger
	level, err := ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, 150.0, level.Quantity)

	movements, err := ledger.ListMovements(1, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, stock.MovementReceive, movements[0].MovementType)
	assert.Equal(t, "purchase_order", movements[0].ReferenceType)

	// Second delivery completes the order
	_, err = svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{
		Quantity:    50,
		BatchNumber: "B-DELIVERY-2",
	}, 9)
	require.NoError(t, err)

	reloaded, err = svc.GetPurchaseOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReceived, reloaded.Status)
	assert.NotNil(t, reloaded.ReceivedDate)

	level, err = ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, level.Quantity)
}

func TestReceiveLineRejectsOverReceive(t *testing.T) {
	svc, ledger, db := newTestService(t)
	order, line, locID := newOrderWithLine(t, svc, db, 100)

	_, err := svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{
		Quantity:    60,
		BatchNumber: "B-1",
	}, 1)
	require.NoError(t, err)

	// 60 received, 50 more would exceed the 100 ordered
	_, err = svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{
		Quantity:    50,
		BatchNumber: "B-2",
	}, 1)
	assert.True(t, apperr.IsValidation(err))

	// The rejected delivery left no trace
	level, err := ledger.GetStockLevel(1, locID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, level.Quantity)

	reloaded, err := svc.GetPurchaseOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPartial, reloaded.Status)
	assert.Equal(t, 60.0, reloaded.Lines[0].QuantityReceived)

	var batchCount int64
	db.Model(&stock.StockBatch{}).Count(&batchCount)
	assert.Equal(t, int64(1), batchCount)
}

func TestReceiveLineRequiresReceivableStatus(t *testing.T) {
	svc, _, db := newTestService(t)
	supplier := seedSupplier(t, svc)
	locID := seedLocation(t, db, "WH-01")

	order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{
		SupplierID:         supplier.ID,
		DeliveryLocationID: &locID,
	}, 1)
	require.NoError(t, err)

	line, err := svc.AddLine(order.ID, &AddLineRequest{ProductID: 1, QuantityOrdered: 10, UnitCost: 1})
	require.NoError(t, err)

	// Draft orders cannot receive
	_, err = svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{Quantity: 5, BatchNumber: "B-1"}, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestReceiveLineRequiresDeliveryLocation(t *testing.T) {
	svc, _, _ := newTestService(t)
	supplier := seedSupplier(t, svc)

	order, err := svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: supplier.ID}, 1)
	require.NoError(t, err)

	line, err := svc.AddLine(order.ID, &AddLineRequest{ProductID: 1, QuantityOrdered: 10, UnitCost: 1})
	require.NoError(t, err)

	_, err = svc.SubmitOrder(order.ID)
	require.NoError(t, err)

	_, err = svc.ReceiveLine(order.ID, line.ID, &ReceiveLineRequest{Quantity: 5, BatchNumber: "B-1"}, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestListPurchaseOrdersByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	supplier := seedSupplier(t, svc)

	first, err := svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: supplier.ID}, 1)
	require.NoError(t, err)
	_, err = svc.CreatePurchaseOrder(&CreateOrderRequest{SupplierID: supplier.ID}, 1)
	require.NoError(t, err)

	_, err = svc.SubmitOrder(first.ID)
	require.NoError(t, err)

	all, err := svc.ListPurchaseOrders(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	draft := OrderStatusDraft
	drafts, err := svc.ListPurchaseOrders(&draft)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}
