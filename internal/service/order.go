package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrInvalidProductID   = errors.New("invalid product_id")
	ErrInvalidTableID     = errors.New("invalid table_id")
	ErrInvalidCustomerID  = errors.New("invalid customer_id")
	ErrInvalidStaffID     = errors.New("invalid staff_id")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrTableNotFound      = errors.New("table not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStatusConflict     = errors.New("order status changed, please retry")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.RestaurantTable, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	TableID     string
	CustomerID  string
	StaffID     string
	Notes       string
	OrderNumber string // optional override; generated when empty
	Items       []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order.
type CreateOrderItemRequest struct {
	ProductID string
	Quantity  int32
	Notes     string
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// allowedTransitions defines the order status state machine. Key is the
// current status, value is the set of statuses it may move to. paid and
// cancelled are terminal.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusServed, enum.OrderStatusCancelled},
	enum.OrderStatusServed:    {enum.OrderStatusPaid, enum.OrderStatusCancelled},
}

// CreateOrder validates, snapshots prices, and creates an order atomically.
// The order row, its items, and the table status change (when a table is
// referenced) all land in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	type parsedItem struct {
		productID uuid.UUID
		quantity  int32
		notes     string
	}
	parsed := make([]parsedItem, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
		parsed[i] = parsedItem{productID: pid, quantity: item.Quantity, notes: item.Notes}
	}

	tableID := pgtype.UUID{}
	if req.TableID != "" {
		tid, err := uuid.Parse(req.TableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		tableID = pgtype.UUID{Bytes: tid, Valid: true}
	}

	customerID := pgtype.UUID{}
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, ErrInvalidCustomerID
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	staffID := pgtype.UUID{}
	if req.StaffID != "" {
		sid, err := uuid.Parse(req.StaffID)
		if err != nil {
			return nil, ErrInvalidStaffID
		}
		staffID = pgtype.UUID{Bytes: sid, Valid: true}
	}

	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = fmt.Sprintf("CMD-%d", time.Now().UnixMilli())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Snapshot each product's current price. The order item keeps that
	// price even if the catalog changes later.
	total := decimal.Zero
	itemParams := make([]database.CreateOrderItemParams, len(parsed))
	for i, item := range parsed {
		product, err := store.GetProduct(ctx, item.productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrProductNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get product: %w", i, err)
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductUnavailable)
		}

		unitPrice := numericToDecimal(product.Price)
		total = total.Add(unitPrice.Mul(decimal.NewFromInt32(item.quantity)))

		notes := pgtype.Text{}
		if item.notes != "" {
			notes = pgtype.Text{String: item.notes, Valid: true}
		}
		itemParams[i] = database.CreateOrderItemParams{
			ProductID: item.productID,
			Quantity:  item.quantity,
			UnitPrice: decimalToNumeric(unitPrice),
			Notes:     notes,
		}
	}

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber: orderNumber,
		TableID:     tableID,
		CustomerID:  customerID,
		StaffID:     staffID,
		Status:      enum.OrderStatusPending,
		TotalAmount: decimalToNumeric(total),
		Notes:       notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, len(itemParams))
	for i, params := range itemParams {
		params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items[i] = item
	}

	if tableID.Valid {
		if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			Status: enum.TableStatusOccupied,
			ID:     uuid.UUID(tableID.Bytes),
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTableNotFound
			}
			return nil, fmt.Errorf("occupy table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// AdvanceStatus moves an order through its lifecycle. The order row is
// locked for the transaction, and the update stays conditional on the status
// that was read; a writer that slipped in before the lock surfaces as
// ErrStatusConflict. Marking an order paid flips its table to cleaning in
// the same transaction.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
	if !isValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := validateStatusTransition(current.Status, newStatus); err != nil {
		return nil, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		Status:     newStatus,
		ID:         orderID,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if newStatus == enum.OrderStatusPaid && updated.TableID.Valid {
		if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			Status: enum.TableStatusCleaning,
			ID:     uuid.UUID(updated.TableID.Bytes),
		}); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("release table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &updated, nil
}

// --- Helpers ---

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusServed, enum.OrderStatusPaid, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
