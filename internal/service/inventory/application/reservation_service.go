// internal/service/inventory/application/reservation_service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eplatform/internal/pkg/logger"
	"eplatform/internal/pkg/metrics"
	"eplatform/internal/service/inventory/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReservationService 实现预占 Saga 的编排逻辑。
// 它自己不发事件: 事件的消费与发布由 EventHandler 负责，
// 这里只关心台账与预占聚合的状态推进。
type ReservationService struct {
	stocks       domain.StockRepository
	reservations domain.ReservationRepository
	tracer       trace.Tracer
}

func NewReservationService(stocks domain.StockRepository, reservations domain.ReservationRepository, tracer trace.Tracer) *ReservationService {
	return &ReservationService{
		stocks:       stocks,
		reservations: reservations,
		tracer:       tracer,
	}
}

// CreateReservation 按给定顺序逐项锁定库存。
// 第一个锁定失败时，把已锁定的前缀按原顺序逐项释放: 这是
// Saga 单步内部的显式补偿，不是数据库回滚: 各 SKU 的锁是针对
// 独立行的独立提交，没有可以回滚的共享事务。
// 全部锁定成功才持久化 PENDING 预占；失败时不留任何记录。
func (s *ReservationService) CreateReservation(ctx context.Context, orderID string, items []domain.ReservationItem) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.Int("order.items", len(items)),
	)

	reservation, err := domain.NewReservation(orderID, items)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 幂等预检: 已知 orderId 直接拒绝，绝不二次锁库存。
	// 并发竞争下两次创建都可能通过预检，最终由唯一约束裁决 (见下)。
	if _, err := s.reservations.FindByOrderID(ctx, orderID); err == nil {
		return nil, domain.ErrDuplicateReservation
	} else if !errors.Is(err, domain.ErrReservationNotFound) {
		return nil, err
	}

	locked := make([]domain.ReservationItem, 0, len(items))
	for _, item := range items {
		if err := s.stocks.EnsureExists(ctx, item.Sku); err != nil {
			s.releaseLocked(ctx, orderID, locked)
			span.RecordError(err)
			return nil, err
		}
		ok, err := s.stocks.LockStock(ctx, item.Sku, item.Quantity)
		if err != nil {
			s.releaseLocked(ctx, orderID, locked)
			span.RecordError(err)
			return nil, err
		}
		if !ok {
			// 库存不足是预期中的业务拒绝，不是故障。
			s.releaseLocked(ctx, orderID, locked)
			span.AddEvent("insufficient stock", trace.WithAttributes(attribute.String("sku", item.Sku)))
			metrics.ReservationsRejected.Inc()
			logger.Ctx(ctx).Info().
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Int("quantity", item.Quantity).
				Msg("Reservation rejected: insufficient stock.")
			return nil, &domain.InsufficientStockError{Sku: item.Sku}
		}
		locked = append(locked, item)
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		// 重复投递赢了竞态: 另一条预占已落库，撤掉我们刚锁的库存。
		s.releaseLocked(ctx, orderID, locked)
		if errors.Is(err, domain.ErrDuplicateReservation) {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist reservation")
		return nil, fmt.Errorf("failed to persist reservation for order %s: %w", orderID, err)
	}

	metrics.ReservationsCreated.Inc()
	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("Created reservation.")
	return reservation, nil
}

// releaseLocked 是创建路径的补偿: 按原顺序释放已锁定的前缀。
// 补偿失败需要记录严重错误，但不中断剩余项的释放。
func (s *ReservationService) releaseLocked(ctx context.Context, orderID string, locked []domain.ReservationItem) {
	for _, item := range locked {
		ok, err := s.stocks.ReleaseStock(ctx, item.Sku, item.Quantity)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Msg("CRITICAL: compensation release failed, manual reconciliation required.")
			continue
		}
		if !ok {
			metrics.StockAnomalies.WithLabelValues("release").Inc()
			logger.Ctx(ctx).Warn().
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Msg("Compensation release affected no rows.")
		}
	}
}

// ConfirmReservation 在支付成功后把锁定的库存转为已消耗。
// 单项确认失败只记日志不终止循环: 锁定量是确认量的上界，
// 正常流程中不会出现 reserved < qty，出现即是需要对账的异常。
func (s *ReservationService) ConfirmReservation(ctx context.Context, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "reservation.Confirm")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	reservation, err := s.reservations.FindByOrderID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !reservation.IsPending() {
		return fmt.Errorf("%w: order %s is %s", domain.ErrInvalidReservationState, orderID, reservation.Status)
	}

	for _, item := range reservation.Items {
		ok, err := s.stocks.ConfirmStock(ctx, item.Sku, item.Quantity)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Msg("Failed to confirm stock.")
			continue
		}
		if !ok {
			metrics.StockAnomalies.WithLabelValues("confirm").Inc()
			logger.Ctx(ctx).Error().
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Int("quantity", item.Quantity).
				Msg("Confirm affected no rows: reserved below confirmed quantity.")
		}
	}

	if err := reservation.Confirm(); err != nil {
		return err
	}
	if err := s.reservations.Save(ctx, reservation); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save confirmed reservation for order %s: %w", orderID, err)
	}

	metrics.ReservationsConfirmed.Inc()
	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("Confirmed reservation.")
	return nil
}

// CancelReservation 把锁定的库存放回可用池。
// 已经进入终态的预占不再补偿，直接当作 no-op: 这保证了
// 支付失败与过期清扫竞争同一预占时至多补偿一次。
func (s *ReservationService) CancelReservation(ctx context.Context, orderID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "reservation.Cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("cancel.reason", reason),
	)

	reservation, err := s.reservations.FindByOrderID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !reservation.IsPending() {
		logger.Ctx(ctx).Info().
			Str("order_id", orderID).
			Str("status", string(reservation.Status)).
			Msg("Reservation already settled, cancel is a no-op.")
		return nil
	}

	for _, item := range reservation.Items {
		ok, err := s.stocks.ReleaseStock(ctx, item.Sku, item.Quantity)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Msg("Failed to release stock.")
			continue
		}
		if !ok {
			// 竞态下部分库存可能已被确认，释放不足额时记录并继续。
			metrics.StockAnomalies.WithLabelValues("release").Inc()
			logger.Ctx(ctx).Warn().
				Str("order_id", orderID).
				Str("sku", item.Sku).
				Int("quantity", item.Quantity).
				Msg("Release affected no rows.")
		}
	}

	if err := reservation.Cancel(); err != nil {
		return err
	}
	if err := s.reservations.Save(ctx, reservation); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save cancelled reservation for order %s: %w", orderID, err)
	}

	metrics.ReservationsCancelled.WithLabelValues(reason).Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", orderID).
		Str("reason", reason).
		Msg("Cancelled reservation.")
	return nil
}

// CancelExpiredReservations 取消所有创建时间早于 threshold 的 PENDING 预占。
// 单条失败只记日志，不能让一条坏记录卡住整轮清扫。返回取消数量。
func (s *ReservationService) CancelExpiredReservations(ctx context.Context, threshold time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.CancelExpired")
	defer span.End()

	expired, err := s.reservations.FindPendingBefore(ctx, threshold)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	cancelled := 0
	for _, reservation := range expired {
		if err := s.CancelReservation(ctx, reservation.OrderID, "expired"); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("order_id", reservation.OrderID).
				Msg("Failed to cancel expired reservation.")
			continue
		}
		cancelled++
	}

	span.SetAttributes(attribute.Int("reaper.cancelled", cancelled))
	return cancelled, nil
}
