// internal/service/inventory/interfaces/consumers.go
package interfaces

import (
	"context"
	"encoding/json"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/service/inventory/application"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "inventory-service"

// NewOrderPlacedConsumer 监听 order.placed 并驱动预占创建。
func NewOrderPlacedConsumer(brokers []string, appSvc *application.EventHandler) *mq.ConsumerAdapter {
	reader := mq.NewKafkaReader(brokers, events.TopicOrderPlaced, consumerGroup)
	return mq.NewConsumerAdapter(reader, func(ctx context.Context, msg kafka.Message) {
		var event events.OrderPlacedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// 解析不了的消息跳过。生产环境中应将其移至死信队列。
			logger.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal order.placed event. Message will be skipped.")
			return
		}
		if err := appSvc.HandleOrderPlaced(ctx, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", event.OrderID).
				Msg("Failed to handle order.placed event.")
		}
	})
}

// NewPaymentSucceededConsumer 监听 payment.succeeded 并确认预占。
func NewPaymentSucceededConsumer(brokers []string, appSvc *application.EventHandler) *mq.ConsumerAdapter {
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

// NewPaymentFailedConsumer 监听 payment.failed 并取消预占。
func NewPaymentFailedConsumer(brokers []string, appSvc *application.EventHandler) *mq.ConsumerAdapter {
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
