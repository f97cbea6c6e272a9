// internal/service/payment/interfaces/consumers.go
package interfaces

import (
	"context"
	"encoding/json"

	"eplatform/internal/events"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/service/payment/application"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "payment-service"

// NewInventoryReservedConsumer 监听 inventory.reserved 并发起扣款。
func NewInventoryReservedConsumer(brokers []string, appSvc *application.PaymentService) *mq.ConsumerAdapter {
	reader := mq.NewKafkaReader(brokers, events.TopicInventoryReserved, consumerGroup)
	return mq.NewConsumerAdapter(reader, func(ctx context.Context, msg kafka.Message) {
		var event events.InventoryReservedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal inventory.reserved event. Message will be skipped.")
			return
		}
		if err := appSvc.HandleInventoryReserved(ctx, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", event.OrderID).
				Msg("Failed to handle inventory.reserved event.")
		}
	})
}

// NewInventoryRejectedConsumer 监听 inventory.rejected 并合成支付失败事件。
func NewInventoryRejectedConsumer(brokers []string, appSvc *application.PaymentService) *mq.ConsumerAdapter {
	reader := mq.NewKafkaReader(brokers, events.TopicInventoryRejected, consumerGroup)
	return mq.NewConsumerAdapter(reader, func(ctx context.Context, msg kafka.Message) {
		var event events.InventoryRejectedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal inventory.rejected event. Message will be skipped.")
			return
		}
		if err := appSvc.HandleInventoryRejected(ctx, &event); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", event.OrderID).
				Msg("Failed to handle inventory.rejected event.")
		}
	})
}
