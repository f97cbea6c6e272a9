// internal/service/order/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"eplatform/internal/events"
	"eplatform/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// OrderKafkaPublisher 把下单事实广播给库存服务。
type OrderKafkaPublisher struct {
	writer *kafka.Writer
}

// NewOrderKafkaPublisher 创建一个新的订单事件发布适配器。
func NewOrderKafkaPublisher(brokers []string) *OrderKafkaPublisher {
	return &OrderKafkaPublisher{
		writer: mq.NewKafkaWriter(brokers, events.TopicOrderPlaced),
	}
}

// PublishOrderPlaced 发布 order.placed。
// Key 用 orderId: 该订单后续的全部事件都会落在同一分区。
func (p *OrderKafkaPublisher) PublishOrderPlaced(ctx context.Context, event *events.OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order.placed event: %w", err)
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (p *OrderKafkaPublisher) Close() error {
	return p.writer.Close()
}
