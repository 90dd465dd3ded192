package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SettingsStore defines the database methods needed by settings handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingsStore interface {
	GetSettings(ctx context.Context) (database.RestaurantSetting, error)
	UpdateSettings(ctx context.Context, arg database.UpdateSettingsParams) (database.RestaurantSetting, error)
}

// SettingsHandler handles the single-row restaurant settings endpoints.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers settings endpoints on the given Chi router.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// --- Request / Response types ---

type settingsRequest struct {
	RestaurantName string `json:"restaurant_name"`
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currency_symbol"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
}

type settingsResponse struct {
	RestaurantName string    `json:"restaurant_name"`
	Currency       string    `json:"currency"`
	CurrencySymbol string    `json:"currency_symbol"`
	Address        *string   `json:"address"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toSettingsResponse(s database.RestaurantSetting) settingsResponse {
	resp := settingsResponse{
		RestaurantName: s.RestaurantName,
		Currency:       s.Currency,
		CurrencySymbol: s.CurrencySymbol,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Address.Valid {
		resp.Address = &s.Address.String
	}
	if s.Phone.Valid {
		resp.Phone = &s.Phone.String
	}
	if s.Email.Valid {
		resp.Email = &s.Email.String
	}
	return resp
}

// --- Handlers ---

// Get returns the restaurant settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: get settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// Update overwrites the restaurant settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RestaurantName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant_name is required"})
		return
	}
	if req.Currency == "" || req.CurrencySymbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "currency and currency_symbol are required"})
		return
	}

	address := pgtype.Text{}
	if req.Address != "" {
		address = pgtype.Text{String: req.Address, Valid: true}
	}
	phone := pgtype.Text{}
	if req.Phone != "" {
		phone = pgtype.Text{String: req.Phone, Valid: true}
	}
	email := pgtype.Text{}
	if req.Email != "" {
		email = pgtype.Text{String: req.Email, Valid: true}
	}

	settings, err := h.store.UpdateSettings(r.Context(), database.UpdateSettingsParams{
		RestaurantName: req.RestaurantName,
		Currency:       req.Currency,
		CurrencySymbol: req.CurrencySymbol,
		Address:        address,
		Phone:          phone,
		Email:          email,
	})
	if err != nil {
		log.Printf("ERROR: update settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}
