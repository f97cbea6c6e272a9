// internal/service/payment/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"eplatform/internal/events"
	"eplatform/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// PaymentKafkaPublisher 发布支付裁决事件。
type PaymentKafkaPublisher struct {
	succeededWriter *kafka.Writer
	failedWriter    *kafka.Writer
}

func NewPaymentKafkaPublisher(brokers []string) *PaymentKafkaPublisher {
	return &PaymentKafkaPublisher{
		succeededWriter: mq.NewKafkaWriter(brokers, events.TopicPaymentSucceeded),
		failedWriter:    mq.NewKafkaWriter(brokers, events.TopicPaymentFailed),
	}
}

// PublishSucceeded 发布 payment.succeeded, Key 用 orderId 保序。
func (p *PaymentKafkaPublisher) PublishSucceeded(ctx context.Context, event *events.PaymentSucceededEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment.succeeded event: %w", err)
	}
	return mq.ProduceMessage(ctx, p.succeededWriter, []byte(event.OrderID), payload)
}

// PublishFailed 发布 payment.failed。
func (p *PaymentKafkaPublisher) PublishFailed(ctx context.Context, event *events.PaymentFailedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment.failed event: %w", err)
	}
	return mq.ProduceMessage(ctx, p.failedWriter, []byte(event.OrderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (p *PaymentKafkaPublisher) Close() error {
	if err := p.succeededWriter.Close(); err != nil {
		return err
	}
	return p.failedWriter.Close()
}
