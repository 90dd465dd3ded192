package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const defaultMovementHistoryLimit = 20

// StockServicer defines the service methods needed by stock handlers.
// Satisfied by *service.StockService; narrow interface for testability.
type StockServicer interface {
	RecordMovement(ctx context.Context, req service.RecordMovementRequest) (*service.RecordMovementResult, error)
}

// StockReadStore defines the database methods needed by stock read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StockReadStore interface {
	ListStock(ctx context.Context, search pgtype.Text) ([]database.ListStockRow, error)
	ListStockMovements(ctx context.Context, arg database.ListStockMovementsParams) ([]database.ListStockMovementsRow, error)
	UpdateStockThreshold(ctx context.Context, arg database.UpdateStockThresholdParams) (database.Stock, error)
}

// StockHandler handles stock level and ledger endpoints.
type StockHandler struct {
	svc   StockServicer
	store StockReadStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(svc StockServicer, store StockReadStore) *StockHandler {
	return &StockHandler{svc: svc, store: store}
}

// RegisterRoutes registers stock endpoints on the given Chi router.
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/movements", h.RecordMovement)
	r.Get("/movements", h.ListMovements)
	r.Put("/{productID}/threshold", h.UpdateThreshold)
}

// --- Request / Response types ---

type recordMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Amount    int32  `json:"amount"`
	Notes     string `json:"notes"`
}

type stockResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	ProductName       string     `json:"product_name,omitempty"`
	QuantityAvailable int32      `json:"quantity_available"`
	MinimumThreshold  int32      `json:"minimum_threshold"`
	LowStock          bool       `json:"low_stock"`
	LastRestocked     *time.Time `json:"last_restocked"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type movementResponse struct {
	ID               uuid.UUID `json:"id"`
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name,omitempty"`
	MovementType     string    `json:"movement_type"`
	Quantity         int32     `json:"quantity"`
	PreviousQuantity int32     `json:"previous_quantity"`
	NewQuantity      int32     `json:"new_quantity"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

type recordMovementResponse struct {
	Stock    stockResponse    `json:"stock"`
	Movement movementResponse `json:"movement"`
}

func toStockRowResponse(s database.ListStockRow) stockResponse {
	resp := stockResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		ProductName:       s.ProductName,
		QuantityAvailable: s.QuantityAvailable,
		MinimumThreshold:  s.MinimumThreshold,
		LowStock:          s.QuantityAvailable <= s.MinimumThreshold,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.LastRestocked.Valid {
		resp.LastRestocked = &s.LastRestocked.Time
	}
	return resp
}

func toStockResponse(s database.Stock) stockResponse {
	resp := stockResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		QuantityAvailable: s.QuantityAvailable,
		MinimumThreshold:  s.MinimumThreshold,
		LowStock:          s.QuantityAvailable <= s.MinimumThreshold,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.LastRestocked.Valid {
		resp.LastRestocked = &s.LastRestocked.Time
	}
	return resp
}

func toMovementResponse(m database.StockMovement) movementResponse {
	resp := movementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		MovementType:     m.MovementType,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		CreatedAt:        m.CreatedAt,
	}
	if m.Notes.Valid {
		resp.Notes = &m.Notes.String
	}
	return resp
}

// --- Handlers ---

// List returns stock levels joined with product names, optionally filtered
// by a product name search.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	search := pgtype.Text{}
	if s := r.URL.Query().Get("search"); s != "" {
		search = pgtype.Text{String: s, Valid: true}
	}

	stock, err := h.store.ListStock(r.Context(), search)
	if err != nil {
		log.Printf("ERROR: list stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]stockResponse, len(stock))
	for i, s := range stock {
		resp[i] = toStockRowResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecordMovement applies a restock, sale, or adjustment through the ledger.
func (h *StockHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req recordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ProductID == "" || req.Type == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id and type are required"})
		return
	}

	result, err := h.svc.RecordMovement(r.Context(), service.RecordMovementRequest{
		ProductID: req.ProductID,
		Type:      req.Type,
		Amount:    req.Amount,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInvalidMovementType),
			errors.Is(err, service.ErrInvalidProductID):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		default:
			log.Printf("ERROR: record stock movement: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, recordMovementResponse{
		Stock:    toStockResponse(result.Stock),
		Movement: toMovementResponse(result.Movement),
	})
}

// ListMovements returns recent ledger entries, newest first.
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	limit := defaultMovementHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	params := database.ListStockMovementsParams{Limit: int32(limit)}
	if s := r.URL.Query().Get("search"); s != "" {
		params.Search = pgtype.Text{String: s, Valid: true}
	}

	movements, err := h.store.ListStockMovements(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list stock movements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]movementResponse, len(movements))
	for i, m := range movements {
		resp[i] = movementResponse{
			ID:               m.ID,
			ProductID:        m.ProductID,
			ProductName:      m.ProductName,
			MovementType:     m.MovementType,
			Quantity:         m.Quantity,
			PreviousQuantity: m.PreviousQuantity,
			NewQuantity:      m.NewQuantity,
			CreatedAt:        m.CreatedAt,
		}
		if m.Notes.Valid {
			resp[i].Notes = &m.Notes.String
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateThreshold sets the low-stock alert threshold for a product.
func (h *StockHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req struct {
		MinimumThreshold int32 `json:"minimum_threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MinimumThreshold < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "minimum_threshold must be >= 0"})
		return
	}

	stock, err := h.store.UpdateStockThreshold(r.Context(), database.UpdateStockThresholdParams{
		MinimumThreshold: req.MinimumThreshold,
		ProductID:        productID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no stock record for product"})
			return
		}
		log.Printf("ERROR: update stock threshold: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStockResponse(stock))
}
