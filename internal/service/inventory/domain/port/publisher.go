// internal/service/inventory/domain/port/publisher.go
package port

import "context"

// EventPublisher 是库存服务的出站端口: 把预占结果通知下游。
// 它位于领域层，但由基础设施层 (Kafka) 实现。
type EventPublisher interface {
	PublishReserved(ctx context.Context, orderID string) error
	PublishRejected(ctx context.Context, orderID, failedSkus, reason string) error
}

// IdempotencyStore 为 order.placed 的重复投递提供快速去重。
// SetIdempotency 首次见到该 key 时返回 true；已存在返回 false。
// 它只是第一道防线: 最终兜底的是 reservations.order_id 的唯一约束。
type IdempotencyStore interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
