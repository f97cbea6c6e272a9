// cmd/payment-service/main.go
package main

import (
	"context"

	"eplatform/internal/pkg/bootstrap"
	"eplatform/internal/pkg/config"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/service/payment/application"
	"eplatform/internal/service/payment/infrastructure"
	"eplatform/internal/service/payment/interfaces"

	"go.opentelemetry.io/otel"
)

const serviceName = "payment-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	cfg := config.GetCurrentConfig()
	logger.Init(serviceName)

	tracer := otel.Tracer(serviceName)
	publisher := infrastructure.NewPaymentKafkaPublisher(cfg.Infra.Kafka.Brokers)

	paymentSvc := application.NewPaymentService(publisher, tracer)

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	consumers := []*mq.ConsumerAdapter{
		interfaces.NewInventoryReservedConsumer(cfg.Infra.Kafka.Brokers, paymentSvc),
		interfaces.NewInventoryRejectedConsumer(cfg.Infra.Kafka.Brokers, paymentSvc),
	}
	for _, c := range consumers {
		c.Start(consumerCtx)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		OnShutdown: func(ctx context.Context) {
			cancelConsumers()
			for _, c := range consumers {
				c.Stop()
			}
			if err := publisher.Close(); err != nil {
				logger.Logger().Error().Err(err).Msg("Error closing kafka publisher")
			}
		},
	})
}
