// internal/service/inventory/application/event_handler.go
package application

import (
	"context"
	"errors"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/service/inventory/domain"
	"eplatform/internal/service/inventory/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventHandler 是事件编排层的业务入口: 每个方法都是
// (事件, 当前聚合状态) -> (新状态, 零或多条出站事件) 的反应函数，
// 由 Kafka 消费者适配器驱动，不感知任何消息传输细节。
type EventHandler struct {
	reservations *ReservationService
	publisher    port.EventPublisher
	idempotency  port.IdempotencyStore
	tracer       trace.Tracer
}

func NewEventHandler(reservations *ReservationService, publisher port.EventPublisher, idempotency port.IdempotencyStore, tracer trace.Tracer) *EventHandler {
	return &EventHandler{
		reservations: reservations,
		publisher:    publisher,
		idempotency:  idempotency,
		tracer:       tracer,
	}
}

// HandleOrderPlaced 处理 order.placed: 创建预占并发布结果。
// 无论成功失败事件都会被消费掉: 没有基于重投递的自动重试，
// 失败路径的出口是 inventory.rejected，由下游收敛订单状态。
func (h *EventHandler) HandleOrderPlaced(ctx context.Context, event *events.OrderPlacedEvent) error {
	ctx, span := h.tracer.Start(ctx, "app.HandleOrderPlaced", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	// 第一道防线: Redis SETNX。Redis 不可用时放行，
	// 由 reservations.order_id 唯一约束兜底。
	if h.idempotency != nil {
		first, err := h.idempotency.SetIdempotency(ctx, event.OrderID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("order_id", event.OrderID).
				Msg("Idempotency check unavailable, falling back to unique constraint.")
		} else if !first {
			span.AddEvent("duplicate delivery short-circuited")
			logger.Ctx(ctx).Info().
				Str("order_id", event.OrderID).
				Msg("Duplicate order.placed delivery ignored.")
			return nil
		}
	}

	items := make([]domain.ReservationItem, 0, len(event.Items))
	for _, item := range event.Items {
		items = append(items, domain.ReservationItem{Sku: item.Sku, Quantity: item.Quantity})
	}

	_, err := h.reservations.CreateReservation(ctx, event.OrderID, items)
	if err == nil {
		if pubErr := h.publisher.PublishReserved(ctx, event.OrderID); pubErr != nil {
			span.RecordError(pubErr)
			logger.Ctx(ctx).Error().Err(pubErr).
				Str("order_id", event.OrderID).
				Msg("Failed to publish inventory.reserved.")
			return pubErr
		}
		return nil
	}

	// 重复创建说明该订单已处理过: 不发任何事件，避免下游看到
	// 同一订单既 reserved 又 rejected。
	if errors.Is(err, domain.ErrDuplicateReservation) {
		logger.Ctx(ctx).Info().
			Str("order_id", event.OrderID).
			Msg("Reservation already exists, skipping.")
		return nil
	}

	var failedSkus string
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		failedSkus = insufficient.Sku
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation creation failed")
	}

	if pubErr := h.publisher.PublishRejected(ctx, event.OrderID, failedSkus, err.Error()); pubErr != nil {
		span.RecordError(pubErr)
		logger.Ctx(ctx).Error().Err(pubErr).
			Str("order_id", event.OrderID).
			Msg("Failed to publish inventory.rejected.")
		return pubErr
	}
	return nil
}

// HandlePaymentSucceeded 处理 payment.succeeded: 确认预占。
// 错误只记日志，不重抛、不自动补偿: 已扣款但确认失败属于
// 运维告警范畴，不在自动修复范围内。
func (h *EventHandler) HandlePaymentSucceeded(ctx context.Context, event *events.PaymentSucceededEvent) error {
	ctx, span := h.tracer.Start(ctx, "app.HandlePaymentSucceeded", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", event.OrderID),
		attribute.String("transaction.id", event.TransactionID),
	)

	if err := h.reservations.ConfirmReservation(ctx, event.OrderID); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Msg("Failed to confirm reservation after payment.")
	}
	return nil
}

// HandlePaymentFailed 处理 payment.failed: 取消预占、放回库存。
func (h *EventHandler) HandlePaymentFailed(ctx context.Context, event *events.PaymentFailedEvent) error {
	ctx, span := h.tracer.Start(ctx, "app.HandlePaymentFailed", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	reason := "payment failed"
	if event.Reason != "" {
		reason = "payment failed: " + event.Reason
	}
	if err := h.reservations.CancelReservation(ctx, event.OrderID, reason); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Msg("Failed to cancel reservation after payment failure.")
	}
	return nil
}
