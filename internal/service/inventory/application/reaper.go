// internal/service/inventory/application/reaper.go
package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/metrics"
)

// ReaperLock 是跨实例互斥的出站端口，由 ZooKeeper 临时节点实现。
// 拿不到锁就跳过本轮: 清扫是周期性的，错过一轮没有代价。
type ReaperLock interface {
	Acquire() (bool, error)
	Release() error
}

// Reaper 周期性地取消超时未收到支付结果的预占，把库存放回可用池。
// 单轮清扫必须完整结束 (或被跳过) 之后下一轮才会开始:
// 循环本身是单 goroutine 的，sweeping 标志另外挡住外部手动触发。
type Reaper struct {
	reservations *ReservationService
	interval     time.Duration
	ttl          time.Duration
	lock         ReaperLock // 可为 nil: 单实例部署不需要分布式互斥

	sweeping atomic.Bool
	wg       sync.WaitGroup
}

func NewReaper(reservations *ReservationService, interval, ttl time.Duration, lock ReaperLock) *Reaper {
	return &Reaper{
		reservations: reservations,
		interval:     interval,
		ttl:          ttl,
		lock:         lock,
	}
}

// Start 启动定时清扫循环。ctx 取消后循环退出。
func (r *Reaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		logger.Logger().Info().
			Dur("interval", r.interval).
			Dur("ttl", r.ttl).
			Msg("✅ Reservation reaper started.")
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.RunOnce(ctx)
			case <-ctx.Done():
				logger.Logger().Info().Msg("🛑 Reservation reaper shutting down.")
				return
			}
		}
	}()
}

// Stop 等待进行中的清扫结束。
func (r *Reaper) Stop() {
	r.wg.Wait()
	logger.Logger().Info().Msg("✅ Reservation reaper stopped.")
}

// RunOnce 执行一轮清扫。已有清扫在进行、或其他实例持有分布式锁时跳过。
func (r *Reaper) RunOnce(ctx context.Context) {
	if !r.sweeping.CompareAndSwap(false, true) {
		logger.Ctx(ctx).Warn().Msg("Previous sweep still running, skipping this tick.")
		return
	}
	defer r.sweeping.Store(false)

	if r.lock != nil {
		ok, err := r.lock.Acquire()
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("Reaper lock unavailable, skipping sweep.")
			return
		}
		if !ok {
			return // 另一个实例正在清扫
		}
		defer func() {
			if err := r.lock.Release(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Msg("Failed to release reaper lock.")
			}
		}()
	}

	threshold := time.Now().Add(-r.ttl)
	cancelled, err := r.reservations.CancelExpiredReservations(ctx, threshold)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Reaper sweep failed.")
		return
	}

	metrics.ReaperSweeps.Inc()
	metrics.ReaperCancelled.Add(float64(cancelled))
	if cancelled > 0 {
		logger.Ctx(ctx).Info().
			Int("cancelled", cancelled).
			Time("threshold", threshold).
			Msg("Reaper cancelled expired reservations.")
	}
}
