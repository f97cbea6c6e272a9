// internal/service/inventory/interfaces/http_handler_test.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eplatform/internal/service/inventory/application"
	"eplatform/internal/service/inventory/domain"

	"go.opentelemetry.io/otel"
)

// memStockRepository 是 HTTP 层测试用的最小内存台账。
type memStockRepository struct {
	mu     sync.Mutex
	stocks map[string]*domain.ProductStock
}

func newMemStockRepository() *memStockRepository {
	return &memStockRepository{stocks: make(map[string]*domain.ProductStock)}
}

func (m *memStockRepository) EnsureExists(ctx context.Context, sku string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stocks[sku]; !ok {
		m.stocks[sku] = domain.NewProductStock(sku, 0)
	}
	return nil
}

func (m *memStockRepository) FindBySku(ctx context.Context, sku string) (*domain.ProductStock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memStockRepository) LockStock(ctx context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok {
		return false, nil
	}
	return s.Lock(qty), nil
}

func (m *memStockRepository) ConfirmStock(ctx context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok {
		return false, nil
	}
	return s.Confirm(qty), nil
}

func (m *memStockRepository) ReleaseStock(ctx context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok {
		return false, nil
	}
	return s.Release(qty), nil
}

func (m *memStockRepository) CreditStock(ctx context.Context, sku string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok {
		s = domain.NewProductStock(sku, 0)
		m.stocks[sku] = s
	}
	s.Credit(qty)
	return nil
}

func (m *memStockRepository) TryReserve(ctx context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stocks[sku]
	if !ok || qty <= 0 || s.Available < qty {
		return false, nil
	}
	s.Available -= qty
	return true, nil
}

type memReservationRepository struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation
}

func newMemReservationRepository() *memReservationRepository {
	return &memReservationRepository{reservations: make(map[string]*domain.Reservation)}
}

func (m *memReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reservations[r.OrderID]; exists {
		return domain.ErrDuplicateReservation
	}
	m.reservations[r.OrderID] = r
	return nil
}

func (m *memReservationRepository) Save(ctx context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.OrderID] = r
	return nil
}

func (m *memReservationRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[orderID]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return r, nil
}

func (m *memReservationRepository) FindPendingBefore(ctx context.Context, threshold time.Time) ([]*domain.Reservation, error) {
	return nil, nil
}

func newTestServer(t *testing.T, seed map[string]int) (*http.ServeMux, *memStockRepository) {
	t.Helper()
	stocks := newMemStockRepository()
	for sku, qty := range seed {
		stocks.stocks[sku] = domain.NewProductStock(sku, qty)
	}
	svc := application.NewStockService(stocks, newMemReservationRepository(), otel.Tracer("test"))
	mux := http.NewServeMux()
	NewHTTPHandler(svc).Register(mux)
	return mux, stocks
}

func TestReserveEndpoint(t *testing.T) {
	mux, stocks := newTestServer(t, map[string]int{"SKU-001": 10})

	body := `{"items":[{"sku":"SKU-001","quantity":4}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reserve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result application.ReserveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if got := stocks.stocks["SKU-001"].Available; got != 6 {
		t.Fatalf("available = %d, want 6", got)
	}
}

func TestReserveEndpointInsufficientStock(t *testing.T) {
	mux, _ := newTestServer(t, map[string]int{"SKU-001": 2})

	body := `{"items":[{"sku":"SKU-001","quantity":5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reserve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var result application.ReserveResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Success || len(result.FailedSkus) != 1 || result.FailedSkus[0] != "SKU-001" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRestockEndpoint(t *testing.T) {
	mux, stocks := newTestServer(t, nil)

	body := `{"sku":"SKU-NEW","quantity":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/restock", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := stocks.stocks["SKU-NEW"].Available; got != 20 {
		t.Fatalf("available = %d, want 20", got)
	}
}

func TestGetStockEndpoint(t *testing.T) {
	mux, _ := newTestServer(t, map[string]int{"SKU-001": 7})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/stock?sku=SKU-001", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["sku"] != "SKU-001" || got["available"].(float64) != 7 {
		t.Fatalf("body = %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/inventory/stock?sku=SKU-404", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown sku status = %d, want 404", rec.Code)
	}
}

func TestReserveEndpointRejectsWrongMethod(t *testing.T) {
	mux, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/reserve", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
