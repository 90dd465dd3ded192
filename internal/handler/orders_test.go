package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/brasserie-pos/api/internal/database"
	"github.com/brasserie-pos/api/internal/enum"
	"github.com/brasserie-pos/api/internal/handler"
	"github.com/brasserie-pos/api/internal/service"
	"github.com/brasserie-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mocks ---

type mockOrderService struct {
	createOrderFn   func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	advanceStatusFn func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createOrderFn(ctx, req)
}

func (m *mockOrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
	return m.advanceStatusFn(ctx, orderID, newStatus)
}

type mockOrderStore struct {
	getOrderFn       func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOrdersFn     func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listOrderItemsFn func(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.getOrderFn(ctx, id)
}

func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	return m.listOrdersFn(ctx, arg)
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error) {
	return m.listOrderItemsFn(ctx, orderID)
}

// mockBroadcaster records events instead of pushing them to websockets.
type mockBroadcaster struct {
	events []ws.Event
}

func (m *mockBroadcaster) Broadcast(event ws.Event) {
	m.events = append(m.events, event)
}

// --- Helpers ---

func makeNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func sampleOrder(t *testing.T, status string) database.Order {
	t.Helper()
	return database.Order{
		ID:          uuid.New(),
		OrderNumber: "CMD-1700000000000",
		Status:      status,
		TotalAmount: makeNumeric(t, "37.50"),
		CreatedAt:   time.Now(),
	}
}

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore, hub *mockBroadcaster) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, hub)
	r := chi.NewRouter()
	r.Route("/orders", h.RegisterRoutes)
	return r
}

// --- Create tests ---

func TestOrderCreate_Valid(t *testing.T) {
	order := sampleOrder(t, enum.OrderStatusPending)
	productID := uuid.New()

	svc := &mockOrderService{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return &service.CreateOrderResult{
				Order: order,
				Items: []database.OrderItem{{
					ID:        uuid.New(),
					OrderID:   order.ID,
					ProductID: productID,
					Quantity:  2,
					UnitPrice: makeNumeric(t, "18.75"),
				}},
			}, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID.String(), "quantity": 2},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["order_number"] != order.OrderNumber {
		t.Errorf("order_number: got %v, want %s", resp["order_number"], order.OrderNumber)
	}
	if resp["status"] != enum.OrderStatusPending {
		t.Errorf("status: got %v, want pending", resp["status"])
	}
	if resp["total_amount"] != "37.50" {
		t.Errorf("total_amount: got %v, want 37.50", resp["total_amount"])
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item in response, got %v", resp["items"])
	}

	if len(hub.events) != 1 {
		t.Fatalf("expected 1 broadcast event, got %d", len(hub.events))
	}
	if hub.events[0].Type != "order.created" {
		t.Errorf("event type: got %s, want order.created", hub.events[0].Type)
	}
}

func TestOrderCreate_EmptyItems(t *testing.T) {
	called := false
	svc := &mockOrderService{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			called = true
			return nil, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if called {
		t.Error("service must not be called for an empty item list")
	}
	if len(hub.events) != 0 {
		t.Error("no event should be broadcast on validation failure")
	}
}

func TestOrderCreate_ValidationError(t *testing.T) {
	svc := &mockOrderService{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, service.ErrProductUnavailable
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderCreate_ServiceFailure(t *testing.T) {
	svc := &mockOrderService{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, context.DeadlineExceeded
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 1},
		},
	})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if len(hub.events) != 0 {
		t.Error("no event should be broadcast when creation fails")
	}
}

// --- List tests ---

func TestOrderList_Defaults(t *testing.T) {
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return []database.Order{sampleOrder(t, enum.OrderStatusPending)}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if captured.Limit != 20 {
		t.Errorf("limit: got %d, want 20", captured.Limit)
	}
	if captured.Offset != 0 {
		t.Errorf("offset: got %d, want 0", captured.Offset)
	}

	resp := decodeResponse(t, rr)
	if resp["limit"] != float64(20) {
		t.Errorf("response limit: got %v, want 20", resp["limit"])
	}
	orders, ok := resp["orders"].([]interface{})
	if !ok || len(orders) != 1 {
		t.Fatalf("expected 1 order, got %v", resp["orders"])
	}
}

func TestOrderList_CapsLimit(t *testing.T) {
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?limit=500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if captured.Limit != 100 {
		t.Errorf("limit: got %d, want 100", captured.Limit)
	}
}

func TestOrderList_StatusFilter(t *testing.T) {
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?status=preparing", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !captured.Status.Valid || captured.Status.String != enum.OrderStatusPreparing {
		t.Errorf("status filter: got %+v, want preparing", captured.Status)
	}
}

func TestOrderList_TableFilter(t *testing.T) {
	tableID := uuid.New()
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?table_id="+tableID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !captured.TableID.Valid || uuid.UUID(captured.TableID.Bytes) != tableID {
		t.Errorf("table filter: got %+v, want %v", captured.TableID, tableID)
	}
}

func TestOrderList_InvalidTableID(t *testing.T) {
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			t.Fatal("store must not be queried with an invalid table_id")
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?table_id=table-7", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderList_DateRange(t *testing.T) {
	var captured database.ListOrdersParams
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			captured = arg
			return nil, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?start_date=2026-03-01&end_date=2026-03-05", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !captured.StartDate.Valid || !captured.StartDate.Time.Equal(wantStart) {
		t.Errorf("start: got %+v, want %v", captured.StartDate, wantStart)
	}
	// end_date is inclusive, so the bound passed down is the next day.
	wantEnd := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !captured.EndDate.Valid || !captured.EndDate.Time.Equal(wantEnd) {
		t.Errorf("end: got %+v, want %v", captured.EndDate, wantEnd)
	}
}

func TestOrderList_InvalidDate(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders?start_date=03-01-2026", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Get tests ---

func TestOrderGet_WithItems(t *testing.T) {
	order := sampleOrder(t, enum.OrderStatusServed)
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			if id != order.ID {
				return database.Order{}, pgx.ErrNoRows
			}
			return order, nil
		},
		listOrderItemsFn: func(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error) {
			return []database.ListOrderItemsByOrderRow{{
				ID:          uuid.New(),
				ProductID:   uuid.New(),
				ProductName: "Magret de canard",
				Quantity:    1,
				UnitPrice:   makeNumeric(t, "24.00"),
			}}, nil
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders/"+order.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", resp["items"])
	}
	item := items[0].(map[string]interface{})
	if item["product_name"] != "Magret de canard" {
		t.Errorf("product_name: got %v, want Magret de canard", item["product_name"])
	}
	if item["unit_price"] != "24.00" {
		t.Errorf("unit_price: got %v, want 24.00", item["unit_price"])
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderGet_InvalidID(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "GET", "/orders/not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Status update tests ---

func TestOrderUpdateStatus_Valid(t *testing.T) {
	order := sampleOrder(t, enum.OrderStatusPreparing)
	svc := &mockOrderService{
		advanceStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
			updated := order
			updated.Status = newStatus
			return &updated, nil
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doRequest(t, router, "PATCH", "/orders/"+order.ID.String()+"/status", map[string]interface{}{
		"status": enum.OrderStatusReady,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != enum.OrderStatusReady {
		t.Errorf("status: got %v, want ready", resp["status"])
	}
	if len(hub.events) != 1 || hub.events[0].Type != "order.status_changed" {
		t.Errorf("expected one order.status_changed event, got %+v", hub.events)
	}
}

func TestOrderUpdateStatus_InvalidStatus(t *testing.T) {
	svc := &mockOrderService{
		advanceStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
			return nil, service.ErrInvalidStatus
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": "shipped",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderUpdateStatus_NotFound(t *testing.T) {
	svc := &mockOrderService{
		advanceStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
			return nil, service.ErrOrderNotFound
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": enum.OrderStatusPreparing,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderUpdateStatus_InvalidTransition(t *testing.T) {
	svc := &mockOrderService{
		advanceStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
			return nil, service.ErrInvalidTransition
		},
	}
	hub := &mockBroadcaster{}
	router := setupOrderRouter(svc, &mockOrderStore{}, hub)

	rr := doRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": enum.OrderStatusPaid,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if len(hub.events) != 0 {
		t.Error("no event should be broadcast on a rejected transition")
	}
}

func TestOrderUpdateStatus_ConcurrentConflict(t *testing.T) {
	svc := &mockOrderService{
		advanceStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus string) (*database.Order, error) {
			return nil, service.ErrStatusConflict
		},
	}
	router := setupOrderRouter(svc, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": enum.OrderStatusPreparing,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestOrderUpdateStatus_MissingStatus(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, &mockOrderStore{}, &mockBroadcaster{})

	rr := doRequest(t, router, "PATCH", "/orders/"+uuid.New().String()+"/status", map[string]interface{}{})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
