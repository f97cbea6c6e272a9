// internal/service/inventory/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"eplatform/internal/events"
	"eplatform/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// InventoryKafkaPublisher 实现了 port.EventPublisher 接口。
// 消息 Key 统一用 orderId，保证同一订单的事件有序到达下游。
type InventoryKafkaPublisher struct {
	reservedWriter *kafka.Writer
	rejectedWriter *kafka.Writer
}

// NewInventoryKafkaPublisher 创建一个新的事件发布适配器。
func NewInventoryKafkaPublisher(brokers []string) *InventoryKafkaPublisher {
	return &InventoryKafkaPublisher{
		reservedWriter: mq.NewKafkaWriter(brokers, events.TopicInventoryReserved),
		rejectedWriter: mq.NewKafkaWriter(brokers, events.TopicInventoryRejected),
	}
}

func (p *InventoryKafkaPublisher) PublishReserved(ctx context.Context, orderID string) error {
	payload, err := json.Marshal(events.InventoryReservedEvent{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("failed to marshal reserved event: %w", err)
	}
	// mq.ProduceMessage 会自动注入追踪上下文
	return mq.ProduceMessage(ctx, p.reservedWriter, []byte(orderID), payload)
}

func (p *InventoryKafkaPublisher) PublishRejected(ctx context.Context, orderID, failedSkus, reason string) error {
	payload, err := json.Marshal(events.InventoryRejectedEvent{
		OrderID:    orderID,
		FailedSkus: failedSkus,
		Reason:     reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rejected event: %w", err)
	}
	return mq.ProduceMessage(ctx, p.rejectedWriter, []byte(orderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (p *InventoryKafkaPublisher) Close() error {
	if err := p.reservedWriter.Close(); err != nil {
		return err
	}
	return p.rejectedWriter.Close()
}
