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
)

// Errors returned by the stock service.
var (
	ErrInvalidMovementType = errors.New("invalid movement_type")
	ErrInvalidAmount       = errors.New("amount must be >= 1")
)

// StockStore defines the DB methods needed by the stock service.
// Satisfied by *database.Queries (and its WithTx variant).
type StockStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	GetStockForUpdate(ctx context.Context, productID uuid.UUID) (database.Stock, error)
	UpsertStock(ctx context.Context, arg database.UpsertStockParams) (database.Stock, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
}

// NewStockStore creates a StockStore from a DBTX (pool or tx).
type NewStockStore func(db database.DBTX) StockStore

// RecordMovementRequest is the input for a ledger entry.
type RecordMovementRequest struct {
	ProductID string
	Type      string
	Amount    int32
	Notes     string
}

// RecordMovementResult is the updated stock level plus the ledger entry.
type RecordMovementResult struct {
	Stock    database.Stock
	Movement database.StockMovement
}

// StockService owns the stock ledger.
type StockService struct {
	pool     TxBeginner
	newStore NewStockStore
}

// NewStockService creates a new StockService.
func NewStockService(pool TxBeginner, newStore NewStockStore) *StockService {
	return &StockService{pool: pool, newStore: newStore}
}

// RecordMovement applies a restock, sale, or adjustment and appends the
// matching ledger entry atomically. The stock row is locked for the
// duration of the transaction, so concurrent movements serialize instead
// of losing updates.
//
// Ledger arithmetic, with current = quantity on hand (0 when the product
// has no stock row yet):
//
//	restock:    new = current + amount, delta = +amount
//	sale:       new = max(0, current - amount), delta = -amount
//	adjustment: amount is the target level; new = amount, delta = new - current
//
// A sale larger than the stock on hand floors the level at zero but still
// logs the full negative delta, so the ledger records what was sold, not
// what was in stock.
func (s *StockService) RecordMovement(ctx context.Context, req RecordMovementRequest) (*RecordMovementResult, error) {
	if req.Amount < 1 {
		return nil, ErrInvalidAmount
	}
	switch req.Type {
	case enum.MovementRestock, enum.MovementSale, enum.MovementAdjustment:
	default:
		return nil, ErrInvalidMovementType
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrInvalidProductID
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	current := int32(0)
	if stock, err := store.GetStockForUpdate(ctx, productID); err == nil {
		current = stock.QuantityAvailable
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lock stock row: %w", err)
	}

	var newQty, delta int32
	lastRestocked := pgtype.Timestamptz{}
	switch req.Type {
	case enum.MovementRestock:
		newQty = current + req.Amount
		delta = req.Amount
		lastRestocked = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	case enum.MovementSale:
		newQty = current - req.Amount
		if newQty < 0 {
			newQty = 0
		}
		delta = -req.Amount
	case enum.MovementAdjustment:
		newQty = req.Amount
		delta = newQty - current
	}

	stock, err := store.UpsertStock(ctx, database.UpsertStockParams{
		ProductID:         productID,
		QuantityAvailable: newQty,
		LastRestocked:     lastRestocked,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert stock: %w", err)
	}

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}
	movement, err := store.CreateStockMovement(ctx, database.CreateStockMovementParams{
		ProductID:        productID,
		MovementType:     req.Type,
		Quantity:         delta,
		PreviousQuantity: current,
		NewQuantity:      newQty,
		Notes:            notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &RecordMovementResult{Stock: stock, Movement: movement}, nil
}
