// internal/service/inventory/application/fakes_test.go
package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"eplatform/internal/service/inventory/domain"
)

// fakeStockRepository 在内存中复刻条件更新的语义:
// 守卫不满足返回 false，与数据库实现 RowsAffected==0 的行为一致。
type fakeStockRepository struct {
	mu     sync.Mutex
	stocks map[string]*domain.ProductStock

	failOn map[string]error // 方法名 -> 注入的错误
	calls  []string         // 记录方法调用顺序, 形如 "Lock:SKU-001"
}

func newFakeStockRepository() *fakeStockRepository {
	return &fakeStockRepository{
		stocks: make(map[string]*domain.ProductStock),
		failOn: make(map[string]error),
	}
}

func (f *fakeStockRepository) seed(sku string, available int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stocks[sku] = domain.NewProductStock(sku, available)
}

func (f *fakeStockRepository) stock(sku string) *domain.ProductStock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stocks[sku]
}

func (f *fakeStockRepository) EnsureExists(ctx context.Context, sku string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["EnsureExists"]; err != nil {
		return err
	}
	if _, ok := f.stocks[sku]; !ok {
		f.stocks[sku] = domain.NewProductStock(sku, 0)
	}
	return nil
}

func (f *fakeStockRepository) FindBySku(ctx context.Context, sku string) (*domain.ProductStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stocks[sku]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStockRepository) LockStock(ctx context.Context, sku string, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Lock:"+sku)
	if err := f.failOn["LockStock"]; err != nil {
		return false, err
	}
	s, ok := f.stocks[sku]
	if !ok {
		return false, nil
	}
	if s.Lock(qty) {
		s.Version++
		return true, nil
	}
	return false, nil
}

func (f *fakeStockRepository) ConfirmStock(ctx context.Context, sku string, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Confirm:"+sku)
	if err := f.failOn["ConfirmStock"]; err != nil {
		return false, err
	}
	s, ok := f.stocks[sku]
	if !ok {
		return false, nil
	}
	if s.Confirm(qty) {
		s.Version++
		return true, nil
	}
	return false, nil
}

func (f *fakeStockRepository) ReleaseStock(ctx context.Context, sku string, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Release:"+sku)
	if err := f.failOn["ReleaseStock"]; err != nil {
		return false, err
	}
	s, ok := f.stocks[sku]
	if !ok {
		return false, nil
	}
	if s.Release(qty) {
		s.Version++
		return true, nil
	}
	return false, nil
}

func (f *fakeStockRepository) CreditStock(ctx context.Context, sku string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Credit:"+sku)
	if err := f.failOn["CreditStock"]; err != nil {
		return err
	}
	s, ok := f.stocks[sku]
	if !ok {
		s = domain.NewProductStock(sku, 0)
		f.stocks[sku] = s
	}
	s.Credit(qty)
	s.Version++
	return nil
}

func (f *fakeStockRepository) TryReserve(ctx context.Context, sku string, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "TryReserve:"+sku)
	if err := f.failOn["TryReserve"]; err != nil {
		return false, err
	}
	s, ok := f.stocks[sku]
	if !ok {
		return false, nil
	}
	if qty <= 0 || s.Available < qty {
		return false, nil
	}
	s.Available -= qty
	s.Version++
	return true, nil
}

// fakeReservationRepository 模拟 order_id 唯一约束。
type fakeReservationRepository struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation

	failOn map[string]error
}

func newFakeReservationRepository() *fakeReservationRepository {
	return &fakeReservationRepository{
		reservations: make(map[string]*domain.Reservation),
		failOn:       make(map[string]error),
	}
}

func (f *fakeReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["Create"]; err != nil {
		return err
	}
	if _, exists := f.reservations[r.OrderID]; exists {
		return domain.ErrDuplicateReservation
	}
	copied := *r
	f.reservations[r.OrderID] = &copied
	return nil
}

func (f *fakeReservationRepository) Save(ctx context.Context, r *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["Save"]; err != nil {
		return err
	}
	copied := *r
	f.reservations[r.OrderID] = &copied
	return nil
}

func (f *fakeReservationRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["FindByOrderID"]; err != nil {
		return nil, err
	}
	r, ok := f.reservations[orderID]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepository) FindPendingBefore(ctx context.Context, threshold time.Time) ([]*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["FindPendingBefore"]; err != nil {
		return nil, err
	}
	var out []*domain.Reservation
	for _, r := range f.reservations {
		if r.Status == domain.StatusPending && r.CreatedAt.Before(threshold) {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReservationRepository) get(orderID string) *domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservations[orderID]
}

// recordingPublisher 记录发布的事件，供断言用。
type recordingPublisher struct {
	mu       sync.Mutex
	reserved []string
	rejected []rejectedEvent

	failPublish error
}

type rejectedEvent struct {
	orderID    string
	failedSkus string
	reason     string
}

func (p *recordingPublisher) PublishReserved(ctx context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublish != nil {
		return p.failPublish
	}
	p.reserved = append(p.reserved, orderID)
	return nil
}

func (p *recordingPublisher) PublishRejected(ctx context.Context, orderID, failedSkus, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublish != nil {
		return p.failPublish
	}
	p.rejected = append(p.rejected, rejectedEvent{orderID: orderID, failedSkus: failedSkus, reason: reason})
	return nil
}

// fakeIdempotencyStore 内存版 SETNX。
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (f *fakeIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

var errInjected = errors.New("injected failure")
