package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Transaction mocks ---

// mockTx implements pgx.Tx with only the methods the menu handler uses.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolledBack = true
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

type mockTxBeginner struct {
	tx *mockTx
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, nil
}

// --- Menu store mock ---

type mockMenuStore struct {
	menus        map[uuid.UUID]database.Menu
	menuProducts map[uuid.UUID][]database.MenuProduct
	products     map[uuid.UUID]database.Product
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		menus:        make(map[uuid.UUID]database.Menu),
		menuProducts: make(map[uuid.UUID][]database.MenuProduct),
		products:     make(map[uuid.UUID]database.Product),
	}
}

func (m *mockMenuStore) addProduct(t *testing.T, name, price string) database.Product {
	t.Helper()
	p := database.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       makeNumeric(t, price),
		IsAvailable: true,
		CreatedAt:   time.Now(),
	}
	m.products[p.ID] = p
	return p
}

func (m *mockMenuStore) addMenu(t *testing.T, name, price string, products ...database.Product) database.Menu {
	t.Helper()
	menu := database.Menu{
		ID:          uuid.New(),
		Name:        name,
		Price:       makeNumeric(t, price),
		IsAvailable: true,
		CreatedAt:   time.Now(),
	}
	m.menus[menu.ID] = menu
	for _, p := range products {
		m.menuProducts[menu.ID] = append(m.menuProducts[menu.ID], database.MenuProduct{
			ID: uuid.New(), MenuID: menu.ID, ProductID: p.ID, Quantity: 1,
		})
	}
	return menu
}

func (m *mockMenuStore) ListMenus(_ context.Context) ([]database.Menu, error) {
	var result []database.Menu
	for _, menu := range m.menus {
		result = append(result, menu)
	}
	return result, nil
}

func (m *mockMenuStore) GetMenu(_ context.Context, id uuid.UUID) (database.Menu, error) {
	menu, ok := m.menus[id]
	if !ok {
		return database.Menu{}, pgx.ErrNoRows
	}
	return menu, nil
}

func (m *mockMenuStore) ListMenuProductsByMenu(_ context.Context, menuID uuid.UUID) ([]database.ListMenuProductsByMenuRow, error) {
	var result []database.ListMenuProductsByMenuRow
	for _, mp := range m.menuProducts[menuID] {
		result = append(result, database.ListMenuProductsByMenuRow{
			ProductID:   mp.ProductID,
			ProductName: m.products[mp.ProductID].Name,
			Quantity:    mp.Quantity,
		})
	}
	return result, nil
}

func (m *mockMenuStore) CreateMenu(_ context.Context, arg database.CreateMenuParams) (database.Menu, error) {
	menu := database.Menu{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		Price:       arg.Price,
		IsAvailable: arg.IsAvailable,
		CreatedAt:   time.Now(),
	}
	m.menus[menu.ID] = menu
	return menu, nil
}

func (m *mockMenuStore) UpdateMenu(_ context.Context, arg database.UpdateMenuParams) (database.Menu, error) {
	menu, ok := m.menus[arg.ID]
	if !ok {
		return database.Menu{}, pgx.ErrNoRows
	}
	menu.Name = arg.Name
	menu.Description = arg.Description
	menu.Price = arg.Price
	menu.IsAvailable = arg.IsAvailable
	m.menus[menu.ID] = menu
	return menu, nil
}

func (m *mockMenuStore) DeleteMenu(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.menus[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.menus, id)
	return id, nil
}

func (m *mockMenuStore) CreateMenuProduct(_ context.Context, arg database.CreateMenuProductParams) (database.MenuProduct, error) {
	mp := database.MenuProduct{
		ID:        uuid.New(),
		MenuID:    arg.MenuID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
	}
	m.menuProducts[arg.MenuID] = append(m.menuProducts[arg.MenuID], mp)
	return mp, nil
}

func (m *mockMenuStore) DeleteMenuProductsByMenu(_ context.Context, menuID uuid.UUID) error {
	delete(m.menuProducts, menuID)
	return nil
}

func (m *mockMenuStore) GetProduct(_ context.Context, id uuid.UUID) (database.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func setupMenuRouter(store *mockMenuStore) (*chi.Mux, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) handler.MenuStore { return store }
	h := handler.NewMenuHandler(pool, newStore, store)
	r := chi.NewRouter()
	r.Route("/menus", h.RegisterRoutes)
	return r, tx
}

// --- List / Get tests ---

func TestMenuList_IncludesComposition(t *testing.T) {
	store := newMockMenuStore()
	entree := store.addProduct(t, "Salade de chèvre", "8.00")
	plat := store.addProduct(t, "Steak frites", "18.50")
	store.addMenu(t, "Menu du midi", "22.00", entree, plat)

	router, _ := setupMenuRouter(store)
	rr := doRequest(t, router, "GET", "/menus", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 menu, got %d", len(resp))
	}
	products, ok := resp[0]["products"].([]interface{})
	if !ok || len(products) != 2 {
		t.Fatalf("expected 2 products in composition, got %v", resp[0]["products"])
	}
}

func TestMenuGet_NotFound(t *testing.T) {
	store := newMockMenuStore()
	router, _ := setupMenuRouter(store)

	rr := doRequest(t, router, "GET", "/menus/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Create tests ---

func TestMenuCreate_Valid(t *testing.T) {
	store := newMockMenuStore()
	p := store.addProduct(t, "Steak frites", "18.50")

	router, tx := setupMenuRouter(store)
	rr := doRequest(t, router, "POST", "/menus", map[string]interface{}{
		"name":  "Menu du soir",
		"price": "29.00",
		"products": []map[string]interface{}{
			{"product_id": p.ID.String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}

	resp := decodeResponse(t, rr)
	if resp["price"] != "29.00" {
		t.Errorf("price: got %v, want 29.00", resp["price"])
	}
	products, ok := resp["products"].([]interface{})
	if !ok || len(products) != 1 {
		t.Fatalf("expected 1 product, got %v", resp["products"])
	}
	first := products[0].(map[string]interface{})
	if first["product_name"] != "Steak frites" {
		t.Errorf("product_name: got %v, want Steak frites", first["product_name"])
	}
}

func TestMenuCreate_DefaultsQuantityToOne(t *testing.T) {
	store := newMockMenuStore()
	p := store.addProduct(t, "Steak frites", "18.50")

	router, _ := setupMenuRouter(store)
	rr := doRequest(t, router, "POST", "/menus", map[string]interface{}{
		"name":  "Menu du soir",
		"price": "29.00",
		"products": []map[string]interface{}{
			{"product_id": p.ID.String()},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	products := resp["products"].([]interface{})
	first := products[0].(map[string]interface{})
	if first["quantity"] != float64(1) {
		t.Errorf("quantity: got %v, want 1", first["quantity"])
	}
}

func TestMenuCreate_RequiresProducts(t *testing.T) {
	store := newMockMenuStore()
	router, _ := setupMenuRouter(store)

	rr := doRequest(t, router, "POST", "/menus", map[string]interface{}{
		"name":     "Menu vide",
		"price":    "10.00",
		"products": []map[string]interface{}{},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuCreate_UnknownProduct(t *testing.T) {
	store := newMockMenuStore()
	router, tx := setupMenuRouter(store)

	rr := doRequest(t, router, "POST", "/menus", map[string]interface{}{
		"name":  "Menu du soir",
		"price": "29.00",
		"products": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	if tx.committed {
		t.Error("transaction must not commit when a product is unknown")
	}
	if !tx.rolledBack {
		t.Error("expected transaction rollback")
	}
}

// --- Update tests ---

func TestMenuUpdate_ReplacesCompositionWholesale(t *testing.T) {
	store := newMockMenuStore()
	old := store.addProduct(t, "Salade de chèvre", "8.00")
	menu := store.addMenu(t, "Menu du midi", "22.00", old)

	replacement := store.addProduct(t, "Magret de canard", "24.00")

	router, tx := setupMenuRouter(store)
	rr := doRequest(t, router, "PUT", "/menus/"+menu.ID.String(), map[string]interface{}{
		"name":  "Menu du midi",
		"price": "24.00",
		"products": []map[string]interface{}{
			{"product_id": replacement.ID.String(), "quantity": 2},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}

	// The stored set is exactly the submitted list, nothing merged.
	stored := store.menuProducts[menu.ID]
	if len(stored) != 1 {
		t.Fatalf("expected 1 menu product after replace, got %d", len(stored))
	}
	if stored[0].ProductID != replacement.ID {
		t.Errorf("product: got %v, want %v", stored[0].ProductID, replacement.ID)
	}
	if stored[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", stored[0].Quantity)
	}
}

func TestMenuUpdate_NotFound(t *testing.T) {
	store := newMockMenuStore()
	p := store.addProduct(t, "Steak frites", "18.50")

	router, _ := setupMenuRouter(store)
	rr := doRequest(t, router, "PUT", "/menus/"+uuid.New().String(), map[string]interface{}{
		"name":  "Menu fantôme",
		"price": "20.00",
		"products": []map[string]interface{}{
			{"product_id": p.ID.String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Delete tests ---

func TestMenuDelete_Valid(t *testing.T) {
	store := newMockMenuStore()
	p := store.addProduct(t, "Steak frites", "18.50")
	menu := store.addMenu(t, "Menu du midi", "22.00", p)

	router, tx := setupMenuRouter(store)
	rr := doRequest(t, router, "DELETE", "/menus/"+menu.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	if !tx.committed {
		t.Error("expected transaction to be committed")
	}
	if _, exists := store.menus[menu.ID]; exists {
		t.Error("expected menu to be removed")
	}
	if len(store.menuProducts[menu.ID]) != 0 {
		t.Error("expected composition to be removed with the menu")
	}
}

func TestMenuDelete_NotFound(t *testing.T) {
	store := newMockMenuStore()
	router, _ := setupMenuRouter(store)

	rr := doRequest(t, router, "DELETE", "/menus/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
