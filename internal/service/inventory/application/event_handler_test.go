// internal/service/inventory/application/event_handler_test.go
package application

import (
	"context"
	"strings"
	"testing"

	"eplatform/internal/events"
	"eplatform/internal/service/inventory/domain"

	"go.opentelemetry.io/otel"
)

func newEventHandlerFixture() (*EventHandler, *fakeStockRepository, *fakeReservationRepository, *recordingPublisher, *fakeIdempotencyStore) {
	stocks := newFakeStockRepository()
	reservations := newFakeReservationRepository()
	publisher := &recordingPublisher{}
	idempotency := newFakeIdempotencyStore()
	tracer := otel.Tracer("test")
	svc := NewReservationService(stocks, reservations, tracer)
	handler := NewEventHandler(svc, publisher, idempotency, tracer)
	return handler, stocks, reservations, publisher, idempotency
}

func TestHandleOrderPlacedPublishesReserved(t *testing.T) {
	handler, stocks, _, publisher, _ := newEventHandlerFixture()
	stocks.seed("SKU-001", 10)

	err := handler.HandleOrderPlaced(context.Background(), &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("HandleOrderPlaced() = %v", err)
	}

	if len(publisher.reserved) != 1 || publisher.reserved[0] != "order-1" {
		t.Fatalf("reserved events = %v, want [order-1]", publisher.reserved)
	}
	if len(publisher.rejected) != 0 {
		t.Fatalf("unexpected rejected events: %v", publisher.rejected)
	}
}

func TestHandleOrderPlacedPublishesRejected(t *testing.T) {
	handler, stocks, reservations, publisher, _ := newEventHandlerFixture()
	stocks.seed("SKU-001", 2)

	err := handler.HandleOrderPlaced(context.Background(), &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("HandleOrderPlaced() = %v", err)
	}

	if len(publisher.rejected) != 1 {
		t.Fatalf("rejected events = %v, want exactly one", publisher.rejected)
	}
	got := publisher.rejected[0]
	if got.orderID != "order-1" || got.failedSkus != "SKU-001" {
		t.Fatalf("rejected event = %+v", got)
	}
	if !strings.Contains(got.reason, "SKU-001") {
		t.Fatalf("reason %q should name the failed sku", got.reason)
	}
	if len(publisher.reserved) != 0 {
		t.Fatalf("unexpected reserved events: %v", publisher.reserved)
	}
	if reservations.get("order-1") != nil {
		t.Fatal("rejected order must not leave a reservation behind")
	}
}

// 重复投递: 第一道防线是幂等键, 命中后直接吞掉, 不发任何事件。
func TestHandleOrderPlacedDuplicateDelivery(t *testing.T) {
	handler, stocks, _, publisher, _ := newEventHandlerFixture()
	stocks.seed("SKU-001", 10)

	event := &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 3}},
	}
	handler.HandleOrderPlaced(context.Background(), event)
	if err := handler.HandleOrderPlaced(context.Background(), event); err != nil {
		t.Fatalf("duplicate delivery = %v, want nil", err)
	}

	if len(publisher.reserved) != 1 {
		t.Fatalf("reserved events = %v, want exactly one", publisher.reserved)
	}
	s := stocks.stock("SKU-001")
	if s.Available != 7 || s.Reserved != 3 {
		t.Fatalf("ledger: available=%d reserved=%d, want 7/3 (locked once)", s.Available, s.Reserved)
	}
}

// Redis 不可用时放行, 由唯一约束兜底: 重复订单同样不发事件。
func TestHandleOrderPlacedIdempotencyStoreDown(t *testing.T) {
	handler, stocks, _, publisher, idempotency := newEventHandlerFixture()
	stocks.seed("SKU-001", 10)
	idempotency.err = errInjected

	event := &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 3}},
	}
	if err := handler.HandleOrderPlaced(context.Background(), event); err != nil {
		t.Fatalf("first delivery = %v", err)
	}
	if err := handler.HandleOrderPlaced(context.Background(), event); err != nil {
		t.Fatalf("duplicate delivery = %v, want nil", err)
	}

	if len(publisher.reserved) != 1 || len(publisher.rejected) != 0 {
		t.Fatalf("events: reserved=%v rejected=%v, want single reserved", publisher.reserved, publisher.rejected)
	}
	s := stocks.stock("SKU-001")
	if s.Available != 7 || s.Reserved != 3 {
		t.Fatalf("ledger: available=%d reserved=%d, want 7/3", s.Available, s.Reserved)
	}
}

func TestHandlePaymentSucceededConfirms(t *testing.T) {
	handler, stocks, reservations, _, _ := newEventHandlerFixture()
	stocks.seed("SKU-001", 10)
	handler.HandleOrderPlaced(context.Background(), &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 3}},
	})

	err := handler.HandlePaymentSucceeded(context.Background(), &events.PaymentSucceededEvent{
		OrderID:       "order-1",
		TransactionID: "tx-1",
	})
	if err != nil {
		t.Fatalf("HandlePaymentSucceeded() = %v", err)
	}
	if got := reservations.get("order-1").Status; got != domain.StatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", got)
	}
}

// 确认失败只记日志: handler 必须返回 nil, 让消息被提交。
func TestHandlePaymentSucceededUnknownOrderSwallowed(t *testing.T) {
	handler, _, _, _, _ := newEventHandlerFixture()
	err := handler.HandlePaymentSucceeded(context.Background(), &events.PaymentSucceededEvent{
		OrderID: "no-such-order",
	})
	if err != nil {
		t.Fatalf("HandlePaymentSucceeded() = %v, want nil", err)
	}
}

func TestHandlePaymentFailedCancels(t *testing.T) {
	handler, stocks, reservations, _, _ := newEventHandlerFixture()
	stocks.seed("SKU-001", 10)
	handler.HandleOrderPlaced(context.Background(), &events.OrderPlacedEvent{
		OrderID: "order-1",
		Items:   []events.OrderItem{{Sku: "SKU-001", Quantity: 3}},
	})

	err := handler.HandlePaymentFailed(context.Background(), &events.PaymentFailedEvent{
		OrderID: "order-1",
		Reason:  "card declined",
	})
	if err != nil {
		t.Fatalf("HandlePaymentFailed() = %v", err)
	}
	if got := reservations.get("order-1").Status; got != domain.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", got)
	}
	s := stocks.stock("SKU-001")
	if s.Available != 10 || s.Reserved != 0 {
		t.Fatalf("ledger: available=%d reserved=%d, want 10/0", s.Available, s.Reserved)
	}
}
