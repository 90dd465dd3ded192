package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaff(ctx context.Context, activeOnly bool) ([]database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	UpdateStaff(ctx context.Context, arg database.UpdateStaffParams) (database.Staff, error)
	GetStaffStats(ctx context.Context, staffID uuid.UUID) (database.GetStaffStatsRow, error)
}

// StaffHandler handles staff endpoints.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Get("/{id}/stats", h.Stats)
}

// --- Request / Response types ---

type staffRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`
	HireDate  string `json:"hire_date"` // YYYY-MM-DD, defaults to today
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	HireDate  string    `json:"hire_date"`
	CreatedAt time.Time `json:"created_at"`
}

type staffStatsResponse struct {
	StaffID     uuid.UUID `json:"staff_id"`
	OrdersTaken int64     `json:"orders_taken"`
	Revenue     string    `json:"revenue"`
}

func toStaffResponse(s database.Staff) staffResponse {
	resp := staffResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Role:      s.Role,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
	if s.HireDate.Valid {
		resp.HireDate = s.HireDate.Time.Format("2006-01-02")
	}
	return resp
}

// --- Handlers ---

// List returns staff members; ?active=true filters to active only.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	staff, err := h.store.ListStaff(r.Context(), activeOnly)
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new staff member.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name, last_name, and role are required"})
		return
	}
	if !isValidStaffRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	hireDate := pgtype.Date{}
	if req.HireDate != "" {
		t, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hire_date format, use YYYY-MM-DD"})
			return
		}
		hireDate = pgtype.Date{Time: t, Valid: true}
	}

	staff, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		HireDate:  hireDate,
	})
	if err != nil {
		log.Printf("ERROR: create staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(staff))
}

// Update modifies a staff member, including the is_active toggle.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	staffID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name, last_name, and role are required"})
		return
	}
	if !isValidStaffRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	staff, err := h.store.UpdateStaff(r.Context(), database.UpdateStaffParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  isActive,
		ID:        staffID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: update staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(staff))
}

// Stats returns a staff member's order count and paid revenue.
func (h *StaffHandler) Stats(w http.ResponseWriter, r *http.Request) {
	staffID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	if _, err := h.store.GetStaff(r.Context(), staffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: get staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	stats, err := h.store.GetStaffStats(r.Context(), staffID)
	if err != nil {
		log.Printf("ERROR: get staff stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, staffStatsResponse{
		StaffID:     staffID,
		OrdersTaken: stats.OrdersTaken,
		Revenue:     numericToString(stats.Revenue),
	})
}

// --- Helpers ---

func isValidStaffRole(role string) bool {
	switch role {
	case enum.StaffRoleGerant, enum.StaffRoleSuperviseur,
		enum.StaffRoleServeur, enum.StaffRoleCuisinier:
		return true
	}
	return false
}
