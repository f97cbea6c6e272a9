// cmd/order-service/main.go
package main

import (
	"context"

	"eplatform/internal/pkg/bootstrap"
	"eplatform/internal/pkg/config"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/service/order/application"
	"eplatform/internal/service/order/infrastructure"
	"eplatform/internal/service/order/interfaces"

	"go.opentelemetry.io/otel"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	cfg := config.GetCurrentConfig()
	logger.Init(serviceName)

	db, err := infrastructure.OpenDB(cfg)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to open database")
	}

	tracer := otel.Tracer(serviceName)
	orderRepo := infrastructure.NewGormOrderRepository(db)
	publisher := infrastructure.NewOrderKafkaPublisher(cfg.Infra.Kafka.Brokers)

	orderSvc := application.NewOrderService(orderRepo, publisher, tracer)

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	consumers := []*mq.ConsumerAdapter{
		interfaces.NewPaymentSucceededConsumer(cfg.Infra.Kafka.Brokers, orderSvc),
		interfaces.NewPaymentFailedConsumer(cfg.Infra.Kafka.Brokers, orderSvc),
	}
	for _, c := range consumers {
		c.Start(consumerCtx)
	}

	httpHandler := interfaces.NewHTTPHandler(orderSvc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			httpHandler.Register(appCtx.Mux)
		},
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
