package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error)
	GetCategorySales(ctx context.Context, arg database.GetCategorySalesParams) ([]database.GetCategorySalesRow, error)
	GetTopProducts(ctx context.Context, arg database.GetTopProductsParams) ([]database.GetTopProductsRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily-sales", h.DailySales)
	r.Get("/category-sales", h.CategorySales)
	r.Get("/top-products", h.TopProducts)
}

// --- Response types ---

type dailySalesResponse struct {
	Date         string `json:"date"`
	OrderCount   int64  `json:"order_count"`
	TotalRevenue string `json:"total_revenue"`
}

type categorySalesResponse struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName string     `json:"category_name"`
	TotalRevenue string     `json:"total_revenue"`
}

type topProductResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	QuantitySold int64     `json:"quantity_sold"`
	TotalRevenue string    `json:"total_revenue"`
}

// --- Handlers ---

// DailySales returns per-day paid order totals for the date range.
// Days without any paid order appear with zero counts so charts keep a
// continuous axis.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), database.GetDailySalesParams{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		log.Printf("ERROR: get daily sales: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byDate := make(map[string]database.GetDailySalesRow, len(rows))
	for _, row := range rows {
		if row.SaleDate.Valid {
			byDate[row.SaleDate.Time.Format("2006-01-02")] = row
		}
	}

	var resp []dailySalesResponse
	for d := startDate; d.Before(endDate); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		entry := dailySalesResponse{Date: key, TotalRevenue: "0.00"}
		if row, ok := byDate[key]; ok {
			entry.OrderCount = row.OrderCount
			entry.TotalRevenue = numericToString(row.TotalRevenue)
		}
		resp = append(resp, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

// CategorySales returns revenue per category for the date range.
// Products without a category are grouped under a single bucket.
func (h *ReportsHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetCategorySales(r.Context(), database.GetCategorySalesParams{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		log.Printf("ERROR: get category sales: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categorySalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = categorySalesResponse{
			CategoryName: row.CategoryName,
			TotalRevenue: numericToString(row.TotalRevenue),
		}
		if row.CategoryID.Valid {
			id := uuid.UUID(row.CategoryID.Bytes)
			resp[i].CategoryID = &id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// TopProducts returns best selling products by quantity for the date range.
func (h *ReportsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 50 {
		limit = 50
	}

	rows, err := h.store.GetTopProducts(r.Context(), database.GetTopProductsParams{
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     int32(limit),
	})
	if err != nil {
		log.Printf("ERROR: get top products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]topProductResponse, len(rows))
	for i, row := range rows {
		resp[i] = topProductResponse{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			TotalRevenue: numericToString(row.TotalRevenue),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDateRange parses start_date and end_date query params.
// Defaults to the last 7 days when neither is provided.
// Returns (startDate, endDate, error) where endDate is exclusive (next day midnight).
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Default: last 7 days, today included
	startDate := today.AddDate(0, 0, -6)
	endDate := today.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		// Make end_date exclusive by adding 1 day
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before end_date")
	}

	return startDate, endDate, nil
}
