// internal/domain/purchasing/service.go
package purchasing

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/domain/stock"
	"github.com/your-org/inventory-ledger/internal/infrastructure/database/redis"
	"github.com/your-org/inventory-ledger/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles suppliers, purchase orders and the receiving workflow.
// All stock effects of receiving go through the movement ledger.
type Service struct {
	db     *gorm.DB
	config *config.Config
	ledger *stock.Service
	redis  *redis.Client
}

// NewService creates a new purchasing service. The redis client is optional
// and only backs the reorder suggestion cache.
func NewService(db *gorm.DB, cfg *config.Config, ledger *stock.Service, redisClient *redis.Client) *Service {
	return &Service{
		db:     db,
		config: cfg,
		ledger: ledger,
		redis:  redisClient,
	}
}

// SUPPLIERS

// CreateSupplierRequest represents supplier creation data
type CreateSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PaymentTerms string `json:"payment_terms"`
	LeadTimeDays *int   `json:"lead_time_days,omitempty"`
	IsPreferred  bool   `json:"is_preferred"`
	Notes        string `json:"notes"`
}

// CreateSupplier creates a new supplier
func (s *Service) CreateSupplier(req *CreateSupplierRequest) (*Supplier, error) {
	supplier := &Supplier{
		Name:         req.Name,
		Code:         req.Code,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		LeadTimeDays: req.LeadTimeDays,
		IsPreferred:  req.IsPreferred,
		IsActive:     true,
		Notes:        req.Notes,
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *Service) GetSupplier(id uint) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("supplier", id)
		}
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	return &supplier, nil
}

// GetSuppliers retrieves all active suppliers ordered by name
func (s *Service) GetSuppliers() ([]Supplier, error) {
	var suppliers []Supplier
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve suppliers: %w", err)
	}
	return suppliers, nil
}

// PURCHASE ORDERS

// CreateOrderRequest represents purchase order creation data
type CreateOrderRequest struct {
	SupplierID         uint       `json:"supplier_id" binding:"required"`
	DeliveryLocationID *uint      `json:"delivery_location_id,omitempty"`
	ExpectedDate       *time.Time `json:"expected_date,omitempty"`
	ShippingAddress    string     `json:"shipping_address"`
	Tax                float64    `json:"tax"`
	Shipping           float64    `json:"shipping"`
	Notes              string     `json:"notes"`
}

// AddLineRequest represents a new line on a draft order
type AddLineRequest struct {
	ProductID       uint    `json:"product_id" binding:"required"`
	QuantityOrdered float64 `json:"quantity_ordered" binding:"required"`
	UnitCost        float64 `json:"unit_cost"`
	SupplierSKU     string  `json:"supplier_sku"`
	Notes           string  `json:"notes"`
}

// ReceiveLineRequest represents one delivery against a line
type ReceiveLineRequest struct {
	Quantity    float64    `json:"quantity" binding:"required"`
	BatchNumber string     `json:"batch_number" binding:"required"`
	LotNumber   string     `json:"lot_number"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	Notes       string     `json:"notes"`
}

// CreatePurchaseOrder creates a draft order with a generated PO number
func (s *Service) CreatePurchaseOrder(req *CreateOrderRequest, userID uint) (*PurchaseOrder, error) {
	if _, err := s.GetSupplier(req.SupplierID); err != nil {
		return nil, err
	}

	var order *PurchaseOrder
	err := s.ledger.WithRetry("create purchase order", func(tx *gorm.DB) error {
		po := &PurchaseOrder{
			PONumber:           s.generatePONumber(tx),
			SupplierID:         req.SupplierID,
			Status:             OrderStatusDraft,
			ExpectedDate:       req.ExpectedDate,
			DeliveryLocationID: req.DeliveryLocationID,
			ShippingAddress:    req.ShippingAddress,
			Tax:                req.Tax,
			Shipping:           req.Shipping,
			Notes:              req.Notes,
			CreatedBy:          userID,
		}
		po.Total = po.Subtotal + po.Tax + po.Shipping

		if err := tx.Create(po).Error; err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}
		order = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// generatePONumber produces PO-YYYYMMDD-NNN, numbering within the day
func (s *Service) generatePONumber(tx *gorm.DB) string {
	prefix := fmt.Sprintf("%s-%s", s.config.Ledger.PONumberPrefix, time.Now().UTC().Format("20060102"))

	var count int64
	tx.Model(&PurchaseOrder{}).Where("po_number LIKE ?", prefix+"%").Count(&count)

	return fmt.Sprintf("%s-%03d", prefix, count+1)
}

// GetPurchaseOrder retrieves an order with its lines and supplier
func (s *Service) GetPurchaseOrder(id uint) (*PurchaseOrder, error) {
	var order PurchaseOrder
	err := s.db.Preload("Lines").Preload("Supplier").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("purchase order", id)
		}
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}
	return &order, nil
}

// ListPurchaseOrders retrieves orders, optionally filtered by status,
// newest first
func (s *Service) ListPurchaseOrders(status *OrderStatus) ([]PurchaseOrder, error) {
	query := s.db.Preload("Supplier").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []PurchaseOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return orders, nil
}

// AddLine appends a line to a draft order and recomputes its totals
func (s *Service) AddLine(orderID uint, req *AddLineRequest) (*PurchaseOrderLine, error) {
	if req.QuantityOrdered <= 0 {
		return nil, apperr.NewValidation("quantity_ordered", "quantity must be positive")
	}

	var line *PurchaseOrderLine
	err := s.ledger.WithRetry("add purchase order line", func(tx *gorm.DB) error {
		var order PurchaseOrder
		if err := stock.LockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("purchase order", orderID)
			}
			return fmt.Errorf("failed to load purchase order: %w", err)
		}
		if order.Status != OrderStatusDraft {
			return apperr.NewValidation("status", fmt.Sprintf("lines can only be added to a draft order, status is '%s'", order.Status))
		}

		l := &PurchaseOrderLine{
			PurchaseOrderID: order.ID,
			ProductID:       req.ProductID,
			QuantityOrdered: req.QuantityOrdered,
			UnitCost:        req.UnitCost,
			LineTotal:       req.QuantityOrdered * req.UnitCost,
			SupplierSKU:     req.SupplierSKU,
			Notes:           req.Notes,
		}
		if err := tx.Create(l).Error; err != nil {
			return fmt.Errorf("failed to create line: %w", err)
		}

		order.Subtotal += l.LineTotal
		order.Total = order.Subtotal + order.Tax + order.Shipping
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order totals: %w", err)
		}

		line = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}

// STATUS TRANSITIONS

var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusDraft:     OrderStatusSubmitted,
	OrderStatusSubmitted: OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusShipped,
}

// advance moves an order one step along the forward path
func (s *Service) advance(orderID uint, to OrderStatus) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := s.ledger.WithRetry("advance purchase order", func(tx *gorm.DB) error {
		var po PurchaseOrder
		if err := stock.LockForUpdate(tx).First(&po, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("purchase order", orderID)
			}
			return fmt.Errorf("failed to load purchase order: %w", err)
		}

		if orderTransitions[po.Status] != to {
			return apperr.NewValidation("status", fmt.Sprintf("cannot move order from '%s' to '%s'", po.Status, to))
		}

		po.Status = to
		if to == OrderStatusSubmitted && po.OrderDate == nil {
			now := time.Now().UTC()
			po.OrderDate = &now
		}
		if err := tx.Save(&po).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		order = &po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// SubmitOrder moves a draft order to submitted and stamps the order date
func (s *Service) SubmitOrder(orderID uint) (*PurchaseOrder, error) {
	return s.advance(orderID, OrderStatusSubmitted)
}

// ConfirmOrder records the supplier's confirmation
func (s *Service) ConfirmOrder(orderID uint) (*PurchaseOrder, error) {
	return s.advance(orderID, OrderStatusConfirmed)
}

// MarkOrderShipped records that the supplier has shipped
func (s *Service) MarkOrderShipped(orderID uint) (*PurchaseOrder, error) {
	return s.advance(orderID, OrderStatusShipped)
}

// CancelOrder cancels an order from any pre-received state
func (s *Service) CancelOrder(orderID uint) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := s.ledger.WithRetry("cancel purchase order", func(tx *gorm.DB) error {
		var po PurchaseOrder
		if err := stock.LockForUpdate(tx).First(&po, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("purchase order", orderID)
			}
			return fmt.Errorf("failed to load purchase order: %w", err)
		}
		if po.Status.IsTerminal() {
			return apperr.NewValidation("status", fmt.Sprintf("cannot cancel an order in status '%s'", po.Status))
		}

		po.Status = OrderStatusCancelled
		if err := tx.Save(&po).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		order = &po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RECEIVING

// receivableStatuses are the states in which deliveries may be booked
var receivableStatuses = map[OrderStatus]bool{
	OrderStatusSubmitted: true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
	OrderStatusPartial:   true,
}

// ReceiveLine books one delivery against a line: creates the stock batch at
// the order's delivery location, records the receive movement through the
// ledger, bumps the line's received quantity and recomputes the order
// status. The whole receipt commits atomically. A line may be received
// multiple times across separate deliveries; over-receiving is rejected
// before any write.
func (s *Service) ReceiveLine(orderID, lineID uint, req *ReceiveLineRequest, userID uint) (*stock.StockBatch, error) {
	if req.Quantity <= 0 {
		return nil, apperr.NewValidation("quantity", "quantity must be positive")
	}

	var batch *stock.StockBatch
	err := s.ledger.WithRetry("receive purchase order line", func(tx *gorm.DB) error {
		var order PurchaseOrder
		if err := stock.LockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("purchase order", orderID)
			}
			return fmt.Errorf("failed to load purchase order: %w", err)
		}
		if !receivableStatuses[order.Status] {
			return apperr.NewValidation("status", fmt.Sprintf("order in status '%s' cannot receive deliveries", order.Status))
		}
		if order.DeliveryLocationID == nil {
			return apperr.NewValidation("delivery_location_id", "order has no delivery location")
		}

		var line PurchaseOrderLine
		if err := stock.LockForUpdate(tx).
			Where("id = ? AND purchase_order_id = ?", lineID, orderID).
			First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFound("purchase order line", lineID)
			}
			return fmt.Errorf("failed to load line: %w", err)
		}

		if line.QuantityReceived+req.Quantity > line.QuantityOrdered {
			return apperr.NewValidation("quantity", fmt.Sprintf(
				"receiving %.2f would exceed ordered quantity: %.2f ordered, %.2f already received",
				req.Quantity, line.QuantityOrdered, line.QuantityReceived))
		}

		b := &stock.StockBatch{
			ProductID:       line.ProductID,
			LocationID:      *order.DeliveryLocationID,
			BatchNumber:     req.BatchNumber,
			LotNumber:       req.LotNumber,
			InitialQuantity: req.Quantity,
			CurrentQuantity: req.Quantity,
			UnitCost:        line.UnitCost,
			ExpiryDate:      req.ExpiryDate,
			ReceivedDate:    time.Now().UTC(),
			SupplierID:      &order.SupplierID,
			PurchaseOrderID: &order.ID,
			Status:          stock.BatchStatusAvailable,
			Notes:           req.Notes,
		}
		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}

		unitCost := line.UnitCost
		moveReq := &stock.RecordMovementRequest{
			ProductID:     line.ProductID,
			MovementType:  stock.MovementReceive,
			Quantity:      req.Quantity,
			ToLocationID:  order.DeliveryLocationID,
			BatchID:       &b.ID,
			UnitCost:      &unitCost,
			ReferenceType: "purchase_order",
			ReferenceID:   &order.ID,
		}
		if _, err := s.ledger.ApplyMovement(tx, moveReq, userID); err != nil {
			return err
		}

		line.QuantityReceived += req.Quantity
		if err := tx.Save(&line).Error; err != nil {
			return fmt.Errorf("failed to update line: %w", err)
		}

		if err := s.recomputeOrderStatus(tx, &order); err != nil {
			return err
		}

		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// recomputeOrderStatus derives the order's receipt status from its lines and
// saves it. Pure over the line sums, so recomputing is idempotent.
func (s *Service) recomputeOrderStatus(tx *gorm.DB, order *PurchaseOrder) error {
	var lines []PurchaseOrderLine
	if err := tx.Where("purchase_order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return fmt.Errorf("failed to load lines: %w", err)
	}

	var totalOrdered, totalReceived float64
	for _, line := range lines {
		totalOrdered += line.QuantityOrdered
		totalReceived += line.QuantityReceived
	}

	if totalOrdered > 0 && totalReceived >= totalOrdered {
		order.Status = OrderStatusReceived
		if order.ReceivedDate == nil {
			now := time.Now().UTC()
			order.ReceivedDate = &now
		}
	} else if totalReceived > 0 {
		order.Status = OrderStatusPartial
	}

	if err := tx.Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}
