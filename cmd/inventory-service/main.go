// cmd/inventory-service/main.go
package main

import (
	"context"
	"time"

	"eplatform/internal/pkg/bootstrap"
	"eplatform/internal/pkg/config"
	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/mq"
	"eplatform/internal/pkg/zookeeper"
	"eplatform/internal/service/inventory/application"
	"eplatform/internal/service/inventory/infrastructure"
	"eplatform/internal/service/inventory/interfaces"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const serviceName = "inventory-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	cfg := config.GetCurrentConfig()
	logger.Init(serviceName)

	// 1. 基础设施: MySQL / Redis / ZooKeeper
	db, err := infrastructure.OpenDB(cfg)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to open database")
	}
	if err := infrastructure.SeedStock(db); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to seed stock")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Infra.Redis.Addr})
	defer redisClient.Close()

	// ZooKeeper 可选: 没配地址时 Reaper 只做进程内互斥
	var reaperLock application.ReaperLock
	var zkConn *zookeeper.Conn
	if len(cfg.Infra.Zookeeper.Addrs) > 0 {
		zkConn, err = zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 5*time.Second)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to connect zookeeper")
		}
		defer zkConn.Close()
		reaperLock = zookeeper.NewTryLock(zkConn, "reservation-reaper")
	}

	// 2. 仓储与应用服务
	tracer := otel.Tracer(serviceName)
	stockRepo := infrastructure.NewGormStockRepository(db)
	reservationRepo := infrastructure.NewGormReservationRepository(db)
	idempotency := infrastructure.NewRedisIdempotencyStore(redisClient, cfg.ReservationTTL())
	publisher := infrastructure.NewInventoryKafkaPublisher(cfg.Infra.Kafka.Brokers)

	reservationSvc := application.NewReservationService(stockRepo, reservationRepo, tracer)
	stockSvc := application.NewStockService(stockRepo, reservationRepo, tracer)
	eventHandler := application.NewEventHandler(reservationSvc, publisher, idempotency, tracer)

	// 3. 驱动适配器: 三个 Kafka 消费者 + 过期预占清扫
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	consumers := []*mq.ConsumerAdapter{
		interfaces.NewOrderPlacedConsumer(cfg.Infra.Kafka.Brokers, eventHandler),
		interfaces.NewPaymentSucceededConsumer(cfg.Infra.Kafka.Brokers, eventHandler),
		interfaces.NewPaymentFailedConsumer(cfg.Infra.Kafka.Brokers, eventHandler),
	}
	for _, c := range consumers {
		c.Start(consumerCtx)
	}

	reaper := application.NewReaper(reservationSvc, cfg.ReaperInterval(), cfg.ReservationTTL(), reaperLock)
	reaper.Start(consumerCtx)

	httpHandler := interfaces.NewHTTPHandler(stockSvc)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			httpHandler.Register(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			cancelConsumers()
			for _, c := range consumers {
				c.Stop()
			}
			reaper.Stop()
			if err := publisher.Close(); err != nil {
				logger.Logger().Error().Err(err).Msg("Error closing kafka publisher")
			}
		},
	})
}
