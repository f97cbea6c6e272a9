// internal/service/order/interfaces/consumers.go
package interfaces

import (
	"context"
	"encoding/json"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/service/order/application"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "order-service"

// NewPaymentSucceededConsumer 监听 payment.succeeded 并把订单置为 PAID。
func NewPaymentSucceededConsumer(brokers []string, appSvc *application.OrderService) *mq.ConsumerAdapter {
	reader := mq.NewKafkaReader(brokers, events.TopicPaymentSucceeded, consumerGroup)
	return mq.NewConsumerAdapter(reader, func(ctx context.Context, msg kafka.Message) {
		var event events.PaymentSucceededEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payment.succeeded event. Message will be skipped.")
			return
		}
		if err := appSvc.HandlePaymentSucceeded(ctx, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", event.OrderID).
				Msg("Failed to handle payment.succeeded event.")
		}
	})
}

// NewPaymentFailedConsumer 监听 payment.failed 并把订单置为 CANCELLED。
func NewPaymentFailedConsumer(brokers []string, appSvc *application.OrderService) *mq.ConsumerAdapter {
	reader := mq.NewKafkaReader(brokers, events.TopicPaymentFailed, consumerGroup)
	return mq.NewConsumerAdapter(reader, func(ctx context.Context, msg kafka.Message) {
		var event events.PaymentFailedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payment.failed event. Message will be skipped.")
			return
		}
		if err := appSvc.HandlePaymentFailed(ctx, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", event.OrderID).
				Msg("Failed to handle payment.failed event.")
		}
	})
}
