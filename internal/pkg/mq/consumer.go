// internal/pkg/mq/consumer.go
package mq

import (
	"context"
	"sync"
	"time"

	"eplatform/internal/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// ConsumerAdapter 是一个驱动适配器: 监听单个 Kafka 主题并驱动应用服务。
// 消息处理完成后无条件提交 Offset: 本系统不依赖重投递做自动重试，
// 失败路径统一通过补偿事件收敛。
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handle  func(ctx context.Context, msg kafka.Message)
	wg      sync.WaitGroup
	stopped bool
}

func NewConsumerAdapter(reader *kafka.Reader, handle func(ctx context.Context, msg kafka.Message)) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader: reader,
		handle: handle,
	}
}

// Start 开始监听 Kafka 主题。这是一个长期运行的方法。
func (a *ConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().
			Str("topic", a.reader.Config().Topic).
			Msg("✅ Kafka Consumer Adapter started.")
		for {
			if a.stopped {
				return
			}
			// 使用 FetchMessage 而不是 ReadMessage，以便控制提交与退出逻辑
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				// 如果是上下文取消导致的错误，则正常退出
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 Kafka Consumer Adapter shutting down.")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("Could not read message. Retrying...")
				time.Sleep(1 * time.Second) // 避免快速失败循环
				continue
			}

			// 恢复上游注入的追踪上下文
			propagator := otel.GetTextMapPropagator()
			headerCarrier := KafkaHeaderCarrier(msg.Headers)
			msgCtx := propagator.Extract(ctx, &headerCarrier)

			a.handle(msgCtx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("Failed to commit messages.")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (a *ConsumerAdapter) Stop() {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
	logger.Logger().Info().
		Str("topic", a.reader.Config().Topic).
		Msg("✅ Kafka Consumer Adapter stopped.")
}
