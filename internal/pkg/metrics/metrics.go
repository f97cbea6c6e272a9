// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 库存预占 Saga 的核心指标。
// 业务拒绝（库存不足）与基础设施故障分开计数，便于告警分级。
var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_created_total",
		Help: "Number of reservations successfully created (stock locked).",
	})

	ReservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_rejected_total",
		Help: "Number of reservation attempts rejected for insufficient stock.",
	})

	ReservationsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_confirmed_total",
		Help: "Number of reservations confirmed after successful payment.",
	})

	ReservationsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reservations_cancelled_total",
		Help: "Number of reservations cancelled, by reason.",
	}, []string{"reason"})

	// StockAnomalies 统计 confirm/release 时台账计数不够扣减的情况。
	// 正常流程中不应出现，出现即需要人工对账。
	StockAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_stock_anomalies_total",
		Help: "Ledger mutations that failed their guard (reserved < qty).",
	}, []string{"operation"})

	ReaperSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reaper_sweeps_total",
		Help: "Number of completed expiry reaper sweeps.",
	})

	ReaperCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reaper_cancelled_total",
		Help: "Number of reservations cancelled by the expiry reaper.",
	})
)
