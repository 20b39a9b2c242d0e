// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/inventory-ledger/internal/domain/location"
	"github.com/your-org/inventory-ledger/internal/domain/purchasing"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/domain/stockcount"
	"gorm.io/gorm"
)

// Migration handles database schema migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database migrations...")

	err := m.db.AutoMigrate(
		// Location registry
		&location.Location{},

		// Stock ledger
		&stock.StockLevel{},
		&stock.StockBatch{},
		&stock.StockMovement{},

		// Purchasing
		&purchasing.Supplier{},
		&purchasing.PurchaseOrder{},
		&purchasing.PurchaseOrderLine{},
		&purchasing.ReorderRule{},

		// Stock counts
		&stockcount.StockCount{},
		&stockcount.StockCountLine{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

// CreateIndexes creates additional database indexes for performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating database indexes...")

	indexes := []string{
		// Movement ledger queries filter by product, then batch or location
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_batch ON stock_movements(batch_id) WHERE batch_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_type, reference_id)",

		// Batch consumption is always FEFO within a product+location
		"CREATE INDEX IF NOT EXISTS idx_stock_batches_product_location ON stock_batches(product_id, location_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_batches_expiry ON stock_batches(expiry_date) WHERE expiry_date IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_stock_batches_status ON stock_batches(status)",

		// Purchase order dashboards filter by supplier and status
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier_status ON purchase_orders(supplier_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_order_lines_order ON purchase_order_lines(purchase_order_id)",

		// Count review screens list by location and status
		"CREATE INDEX IF NOT EXISTS idx_stock_counts_location_status ON stock_counts(location_id, status)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData seeds the database with initial data for development
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	if err := m.seedLocations(); err != nil {
		return fmt.Errorf("failed to seed locations: %w", err)
	}

	if err := m.seedSuppliers(); err != nil {
		return fmt.Errorf("failed to seed suppliers: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedLocations creates the default storage locations
func (m *Migration) seedLocations() error {
	var count int64
	m.db.Model(&location.Location{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	locations := []location.Location{
		{
			Name:         "Store Floor",
			Code:         "STORE",
			Description:  "Main retail floor",
			LocationType: location.LocationTypeStore,
			IsActive:     true,
		},
		{
			Name:         "Back Warehouse",
			Code:         "WH-01",
			Description:  "Primary bulk storage",
			LocationType: location.LocationTypeWarehouse,
			IsActive:     true,
		},
		{
			Name:                       "Refrigerated Storage",
			Code:                       "FRIDGE",
			Description:                "Cold chain storage, 2-8°C",
			LocationType:               location.LocationTypeRefrigerated,
			RequiresTemperatureControl: true,
			IsActive:                   true,
		},
		{
			Name:         "Clinic Dispensary",
			Code:         "CLINIC",
			Description:  "In-clinic dispensing shelf",
			LocationType: location.LocationTypeClinic,
			IsActive:     true,
		},
	}

	for _, loc := range locations {
		if err := m.db.Create(&loc).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d default locations", len(locations))
	return nil
}

// seedSuppliers creates a demo supplier for development
func (m *Migration) seedSuppliers() error {
	var count int64
	m.db.Model(&purchasing.Supplier{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	leadTime := 5
	supplier := purchasing.Supplier{
		Name:         "Acme Veterinary Supply",
		Code:         "ACME",
		ContactName:  "Jordan Reyes",
		Email:        "orders@acmevetsupply.example.com",
		Phone:        "+1-555-0142",
		PaymentTerms: "net30",
		LeadTimeDays: &leadTime,
		IsActive:     true,
		IsPreferred:  true,
	}

	if err := m.db.Create(&supplier).Error; err != nil {
		return err
	}

	log.Println("✅ Seeded demo supplier")
	return nil
}

// GetTableInfo logs information about created tables
func (m *Migration) GetTableInfo() {
	tables := []string{
		"locations",
		"stock_levels", "stock_batches", "stock_movements",
		"suppliers", "purchase_orders", "purchase_order_lines", "reorder_rules",
		"stock_counts", "stock_count_lines",
	}

	log.Println("📊 Database tables:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err == nil {
			log.Printf("  - %s: %d records", table, count)
		}
	}
}
