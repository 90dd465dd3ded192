package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/enum"
	"github.com/brasserie-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Mock store ---

type mockTableStore struct {
	tables map[uuid.UUID]database.RestaurantTable
}

func newMockTableStore() *mockTableStore {
	return &mockTableStore{tables: make(map[uuid.UUID]database.RestaurantTable)}
}

func (m *mockTableStore) addTable(number, capacity int32, status string) database.RestaurantTable {
	tbl := database.RestaurantTable{
		ID:          uuid.New(),
		TableNumber: number,
		Capacity:    capacity,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	m.tables[tbl.ID] = tbl
	return tbl
}

func (m *mockTableStore) ListTables(_ context.Context) ([]database.RestaurantTable, error) {
	var result []database.RestaurantTable
	for _, tbl := range m.tables {
		result = append(result, tbl)
	}
	return result, nil
}

func (m *mockTableStore) CreateTable(_ context.Context, arg database.CreateTableParams) (database.RestaurantTable, error) {
	for _, tbl := range m.tables {
		if tbl.TableNumber == arg.TableNumber {
			return database.RestaurantTable{}, &pgconn.PgError{Code: "23505", ConstraintName: "restaurant_tables_table_number_key"}
		}
	}
	tbl := database.RestaurantTable{
		ID:          uuid.New(),
		TableNumber: arg.TableNumber,
		Capacity:    arg.Capacity,
		Status:      arg.Status,
		CreatedAt:   time.Now(),
	}
	m.tables[tbl.ID] = tbl
	return tbl, nil
}

func (m *mockTableStore) UpdateTable(_ context.Context, arg database.UpdateTableParams) (database.RestaurantTable, error) {
	tbl, ok := m.tables[arg.ID]
	if !ok {
		return database.RestaurantTable{}, pgx.ErrNoRows
	}
	tbl.TableNumber = arg.TableNumber
	tbl.Capacity = arg.Capacity
	m.tables[tbl.ID] = tbl
	return tbl, nil
}

func (m *mockTableStore) UpdateTableStatus(_ context.Context, arg database.UpdateTableStatusParams) (database.RestaurantTable, error) {
	tbl, ok := m.tables[arg.ID]
	if !ok {
		return database.RestaurantTable{}, pgx.ErrNoRows
	}
	tbl.Status = arg.Status
	m.tables[tbl.ID] = tbl
	return tbl, nil
}

func (m *mockTableStore) DeleteTable(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.tables[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.tables, id)
	return id, nil
}

func setupTableRouter(store *mockTableStore) *chi.Mux {
	h := handler.NewTableHandler(store)
	r := chi.NewRouter()
	r.Route("/tables", h.RegisterRoutes)
	return r
}

// --- List tests ---

func TestTableList_ReturnsTables(t *testing.T) {
	store := newMockTableStore()
	store.addTable(1, 4, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "GET", "/tables", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 table, got %d", len(resp))
	}
	if resp[0]["status"] != enum.TableStatusAvailable {
		t.Errorf("status: got %v, want available", resp[0]["status"])
	}
}

// --- Create tests ---

func TestTableCreate_Valid(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": 7,
		"capacity":     6,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["table_number"] != float64(7) {
		t.Errorf("table_number: got %v, want 7", resp["table_number"])
	}
	// New tables start out available.
	if resp["status"] != enum.TableStatusAvailable {
		t.Errorf("status: got %v, want available", resp["status"])
	}
}

func TestTableCreate_DuplicateNumber(t *testing.T) {
	store := newMockTableStore()
	store.addTable(3, 2, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": 3,
		"capacity":     4,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestTableCreate_InvalidNumber(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": 0,
		"capacity":     4,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableCreate_InvalidStatus(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": 9,
		"capacity":     4,
		"status":       "broken",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Update tests ---

func TestTableUpdate_Valid(t *testing.T) {
	store := newMockTableStore()
	tbl := store.addTable(2, 2, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "PUT", "/tables/"+tbl.ID.String(), map[string]interface{}{
		"table_number": 2,
		"capacity":     8,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["capacity"] != float64(8) {
		t.Errorf("capacity: got %v, want 8", resp["capacity"])
	}
}

func TestTableUpdate_NotFound(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+uuid.New().String(), map[string]interface{}{
		"table_number": 2,
		"capacity":     4,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Status update tests ---

func TestTableUpdateStatus_Valid(t *testing.T) {
	store := newMockTableStore()
	tbl := store.addTable(4, 4, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "PATCH", "/tables/"+tbl.ID.String()+"/status", map[string]interface{}{
		"status": enum.TableStatusReserved,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != enum.TableStatusReserved {
		t.Errorf("status: got %v, want reserved", resp["status"])
	}
}

func TestTableUpdateStatus_InvalidValue(t *testing.T) {
	store := newMockTableStore()
	tbl := store.addTable(4, 4, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "PATCH", "/tables/"+tbl.ID.String()+"/status", map[string]interface{}{
		"status": "smoking",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableUpdateStatus_NotFound(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PATCH", "/tables/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": enum.TableStatusCleaning,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Delete tests ---

func TestTableDelete_Valid(t *testing.T) {
	store := newMockTableStore()
	tbl := store.addTable(5, 2, enum.TableStatusAvailable)

	router := setupTableRouter(store)
	rr := doRequest(t, router, "DELETE", "/tables/"+tbl.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
}

func TestTableDelete_NotFound(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "DELETE", "/tables/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
