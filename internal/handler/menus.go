package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenus(ctx context.Context) ([]database.Menu, error)
	GetMenu(ctx context.Context, id uuid.UUID) (database.Menu, error)
	ListMenuProductsByMenu(ctx context.Context, menuID uuid.UUID) ([]database.ListMenuProductsByMenuRow, error)
	CreateMenu(ctx context.Context, arg database.CreateMenuParams) (database.Menu, error)
	UpdateMenu(ctx context.Context, arg database.UpdateMenuParams) (database.Menu, error)
	DeleteMenu(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateMenuProduct(ctx context.Context, arg database.CreateMenuProductParams) (database.MenuProduct, error)
	DeleteMenuProductsByMenu(ctx context.Context, menuID uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
}

// NewMenuStore creates a MenuStore from a DBTX (pool or tx).
type NewMenuStore func(db database.DBTX) MenuStore

// MenuHandler handles composite menu endpoints. Writes touch the menu row
// and its product set together, so they run in a transaction.
type MenuHandler struct {
	pool     service.TxBeginner
	newStore NewMenuStore
	store    MenuStore
}

// NewMenuHandler creates a new MenuHandler. store is used for reads;
// writes build a fresh store from the transaction.
func NewMenuHandler(pool service.TxBeginner, newStore NewMenuStore, store MenuStore) *MenuHandler {
	return &MenuHandler{pool: pool, newStore: newStore, store: store}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       string               `json:"price"`
	IsAvailable *bool                `json:"is_available"`
	Products    []menuProductRequest `json:"products"`
}

type menuProductRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type menuResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description"`
	Price       string                `json:"price"`
	IsAvailable bool                  `json:"is_available"`
	CreatedAt   time.Time             `json:"created_at"`
	Products    []menuProductResponse `json:"products"`
}

type menuProductResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int32     `json:"quantity"`
}

func toMenuResponse(m database.Menu, products []database.ListMenuProductsByMenuRow) menuResponse {
	resp := menuResponse{
		ID:          m.ID,
		Name:        m.Name,
		Price:       numericToString(m.Price),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		Products:    make([]menuProductResponse, len(products)),
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	for i, mp := range products {
		resp.Products[i] = menuProductResponse{
			ProductID:   mp.ProductID,
			ProductName: mp.ProductName,
			Quantity:    mp.Quantity,
		}
	}
	return resp
}

// parseMenuRequest validates shared create/update fields. A non-empty
// second return is a 400 message.
func parseMenuRequest(req menuRequest) (database.CreateMenuParams, string) {
	if req.Name == "" {
		return database.CreateMenuParams{}, "name is required"
	}
	if req.Price == "" {
		return database.CreateMenuParams{}, "price is required"
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return database.CreateMenuParams{}, "invalid price"
	}
	if price.IsNegative() {
		return database.CreateMenuParams{}, "price must be >= 0"
	}
	if len(req.Products) == 0 {
		return database.CreateMenuParams{}, "at least one product is required"
	}
	for i, p := range req.Products {
		if p.ProductID == "" {
			return database.CreateMenuParams{}, fmt.Sprintf("products[%d]: product_id is required", i)
		}
		if p.Quantity < 0 {
			return database.CreateMenuParams{}, fmt.Sprintf("products[%d]: quantity must be >= 1", i)
		}
	}

	params := database.CreateMenuParams{
		Name:        req.Name,
		Price:       decimalToNumeric(price),
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		params.IsAvailable = *req.IsAvailable
	}
	if req.Description != "" {
		params.Description = pgtype.Text{String: req.Description, Valid: true}
	}
	return params, ""
}

// insertMenuProducts validates each product and writes the menu_products
// set. Quantity defaults to 1 when omitted.
func insertMenuProducts(ctx context.Context, store MenuStore, menuID uuid.UUID, products []menuProductRequest) (int, error) {
	for i, p := range products {
		pid, err := uuid.Parse(p.ProductID)
		if err != nil {
			return http.StatusBadRequest, fmt.Errorf("products[%d]: invalid product_id", i)
		}
		if _, err := store.GetProduct(ctx, pid); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return http.StatusBadRequest, fmt.Errorf("products[%d]: product not found", i)
			}
			return http.StatusInternalServerError, fmt.Errorf("get product: %w", err)
		}
		qty := p.Quantity
		if qty == 0 {
			qty = 1
		}
		if _, err := store.CreateMenuProduct(ctx, database.CreateMenuProductParams{
			MenuID:    menuID,
			ProductID: pid,
			Quantity:  qty,
		}); err != nil {
			return http.StatusInternalServerError, fmt.Errorf("create menu product: %w", err)
		}
	}
	return 0, nil
}

// --- Handlers ---

// List returns all menus with their product compositions.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.store.ListMenus(r.Context())
	if err != nil {
		log.Printf("ERROR: list menus: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuResponse, len(menus))
	for i, m := range menus {
		products, err := h.store.ListMenuProductsByMenu(r.Context(), m.ID)
		if err != nil {
			log.Printf("ERROR: list menu products: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i] = toMenuResponse(m, products)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu with its composition.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menuID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	menu, err := h.store.GetMenu(r.Context(), menuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not found"})
			return
		}
		log.Printf("ERROR: get menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	products, err := h.store.ListMenuProductsByMenu(r.Context(), menuID)
	if err != nil {
		log.Printf("ERROR: list menu products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuResponse(menu, products))
}

// Create writes the menu row and its product set in one transaction.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: create menu: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	store := h.newStore(tx)

	menu, err := store.CreateMenu(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if status, err := insertMenuProducts(r.Context(), store, menu.ID, req.Products); err != nil {
		if status == http.StatusBadRequest {
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create menu: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	products, err := store.ListMenuProductsByMenu(r.Context(), menu.ID)
	if err != nil {
		log.Printf("ERROR: create menu: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: create menu: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuResponse(menu, products))
}

// Update modifies the menu row and replaces its product set wholesale
// (delete-all-then-insert) in one transaction. The stored composition
// always reflects exactly the submitted list.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	menuID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	var req menuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, msg := parseMenuRequest(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: update menu: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	store := h.newStore(tx)

	menu, err := store.UpdateMenu(r.Context(), database.UpdateMenuParams{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		IsAvailable: params.IsAvailable,
		ID:          menuID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not found"})
			return
		}
		log.Printf("ERROR: update menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := store.DeleteMenuProductsByMenu(r.Context(), menuID); err != nil {
		log.Printf("ERROR: update menu: clear products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if status, err := insertMenuProducts(r.Context(), store, menuID, req.Products); err != nil {
		if status == http.StatusBadRequest {
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: update menu: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	products, err := store.ListMenuProductsByMenu(r.Context(), menuID)
	if err != nil {
		log.Printf("ERROR: update menu: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: update menu: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuResponse(menu, products))
}

// Delete removes the menu and its composition in one transaction.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	menuID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu ID"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: delete menu: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	store := h.newStore(tx)

	if err := store.DeleteMenuProductsByMenu(r.Context(), menuID); err != nil {
		log.Printf("ERROR: delete menu: clear products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if _, err := store.DeleteMenu(r.Context(), menuID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu not found"})
			return
		}
		log.Printf("ERROR: delete menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: delete menu: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
