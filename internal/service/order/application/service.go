// internal/service/order/application/service.go
package application

import (
	"context"
	"fmt"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/service/order/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OrderEventPublisher 订单侧需要发布的事件。
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *events.OrderPlacedEvent) error
}

// OrderService 订单应用服务。
// 下单即成功: 库存与支付的裁决通过事件异步回流，订单只收敛状态。
type OrderService struct {
	orders    domain.OrderRepository
	publisher OrderEventPublisher
	tracer    trace.Tracer
}

func NewOrderService(orders domain.OrderRepository, publisher OrderEventPublisher, tracer trace.Tracer) *OrderService {
	return &OrderService{orders: orders, publisher: publisher, tracer: tracer}
}

// PlaceOrderRequest 下单请求。
type PlaceOrderRequest struct {
	Items            []domain.OrderItem `json:"items"`
	TotalAmountCents int64              `json:"totalAmountCents"`
	Currency         string             `json:"currency"`
}

// PlaceOrder 创建订单并发布 order.placed。
// 订单落库成功但发布失败时返回错误: 调用方可以重试，
// 重复的 order.placed 会被库存侧的幂等层吸收。
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	orderID := "ORD-" + uuid.NewString()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := domain.NewOrder(orderID, req.Items, req.TotalAmountCents, req.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	event := &events.OrderPlacedEvent{
		OrderID:          order.ID,
		TotalAmountCents: order.TotalAmountCents,
		Currency:         order.Currency,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, events.OrderItem{Sku: item.Sku, Quantity: item.Quantity})
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order.placed")
		return nil, fmt.Errorf("failed to publish order.placed: %w", err)
	}

	logger.Ctx(ctx).Info().Str("order_id", order.ID).Int("items", len(order.Items)).Msg("✅ 订单已创建, order.placed 已发布")
	return order, nil
}

// GetOrder 查询订单。
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// HandlePaymentSucceeded 支付成功, 订单置为 PAID。
func (s *OrderService) HandlePaymentSucceeded(ctx context.Context, event *events.PaymentSucceededEvent) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.HandlePaymentSucceeded")
	defer span.End()

	order, err := s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return err
	}
	if err := order.MarkAsPaid(); err != nil {
		// 重复投递或乱序: 订单已经收敛过, 不再搬动状态。
		logger.Ctx(ctx).Info().Str("order_id", event.OrderID).Str("state", string(order.State)).Msg("payment.succeeded on settled order, skipping")
		return nil
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("order_id", event.OrderID).Str("transaction_id", event.TransactionID).Msg("✅ 订单支付成功")
	return nil
}

// HandlePaymentFailed 支付失败, 订单置为 CANCELLED。
func (s *OrderService) HandlePaymentFailed(ctx context.Context, event *events.PaymentFailedEvent) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.HandlePaymentFailed")
	defer span.End()

	order, err := s.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return err
	}
	if err := order.MarkAsCancelled(event.Reason); err != nil {
		logger.Ctx(ctx).Info().Str("order_id", event.OrderID).Str("state", string(order.State)).Msg("payment.failed on settled order, skipping")
		return nil
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}
	logger.Ctx(ctx).Warn().Str("order_id", event.OrderID).Str("reason", event.Reason).Msg("🛑 订单已取消")
	return nil
}
