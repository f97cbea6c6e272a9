// internal/service/payment/application/service.go
package application

import (
	"context"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentEventPublisher 支付侧需要发布的事件。
type PaymentEventPublisher interface {
	PublishSucceeded(ctx context.Context, event *events.PaymentSucceededEvent) error
	PublishFailed(ctx context.Context, event *events.PaymentFailedEvent) error
}

// PaymentService 支付应用服务。
// 扣款这里是模拟的: 预占成功的订单一律扣款成功。
// 接入真实支付网关时只需要替换 HandleInventoryReserved 的 charge 部分。
type PaymentService struct {
	publisher PaymentEventPublisher
	tracer    trace.Tracer
}

func NewPaymentService(publisher PaymentEventPublisher, tracer trace.Tracer) *PaymentService {
	return &PaymentService{publisher: publisher, tracer: tracer}
}

// HandleInventoryReserved 库存锁定成功, 发起扣款。
func (s *PaymentService) HandleInventoryReserved(ctx context.Context, event *events.InventoryReservedEvent) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.HandleInventoryReserved")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	txID := uuid.NewString()
	logger.Ctx(ctx).Info().Str("order_id", event.OrderID).Str("transaction_id", txID).Msg("✅ 扣款成功")
	return s.publisher.PublishSucceeded(ctx, &events.PaymentSucceededEvent{
		OrderID:       event.OrderID,
		TransactionID: txID,
	})
}

// HandleInventoryRejected 库存被拒, 网关从未被调用,
// 合成一条 payment.failed 让订单状态照常收敛。
func (s *PaymentService) HandleInventoryRejected(ctx context.Context, event *events.InventoryRejectedEvent) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.HandleInventoryRejected")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	reason := event.Reason
	if reason == "" {
		reason = "inventory_rejected"
	}
	logger.Ctx(ctx).Warn().Str("order_id", event.OrderID).Str("reason", reason).Msg("🛑 库存被拒, 合成支付失败事件")
	return s.publisher.PublishFailed(ctx, &events.PaymentFailedEvent{
		OrderID: event.OrderID,
		Reason:  reason,
	})
}
