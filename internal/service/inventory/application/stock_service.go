// internal/service/inventory/application/stock_service.go
package application

import (
	"context"
	"fmt"

	"eplatform/internal/pkg/logger"
	"eplatform/internal/service/inventory/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ReserveResult 同步预留的结果。库存不足是拒绝响应，不是错误。
type ReserveResult struct {
	Success    bool     `json:"success"`
	FailedSkus []string `json:"failedSkus"`
}

// StockService 承载事件流之外的同步库存操作:
// 下单服务的同步 checkout 路径、补货、库存查询。
// 与 Saga 共用同一个台账，但走的是更简单的独立代码路径。
type StockService struct {
	stocks       domain.StockRepository
	reservations domain.ReservationRepository
	tracer       trace.Tracer

	// 库存查询是热点读，用 singleflight 合并同一 SKU 的并发查询。
	lookups singleflight.Group
}

func NewStockService(stocks domain.StockRepository, reservations domain.ReservationRepository, tracer trace.Tracer) *StockService {
	return &StockService{
		stocks:       stocks,
		reservations: reservations,
		tracer:       tracer,
	}
}

// Reserve 同步地、全有或全无地扣减可用库存。
// 与 Saga 的创建路径不同，这里走完全部行项目、汇总所有不足的
// SKU 一起报给调用方；任何一项不足时，把已扣减的项补回去，
// 台账恢复到调用前的状态。
func (s *StockService) Reserve(ctx context.Context, items []domain.ReservationItem) (*ReserveResult, error) {
	ctx, span := s.tracer.Start(ctx, "stock.Reserve")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(items)))

	if len(items) == 0 {
		return nil, domain.ErrEmptyItems
	}
	for _, item := range items {
		if item.Sku == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidItem
		}
	}

	var reserved []domain.ReservationItem
	var failed []string
	for _, item := range items {
		if err := s.stocks.EnsureExists(ctx, item.Sku); err != nil {
			s.creditBack(ctx, reserved)
			return nil, err
		}
		ok, err := s.stocks.TryReserve(ctx, item.Sku, item.Quantity)
		if err != nil {
			s.creditBack(ctx, reserved)
			return nil, err
		}
		if !ok {
			failed = append(failed, item.Sku)
			continue
		}
		reserved = append(reserved, item)
	}

	if len(failed) > 0 {
		s.creditBack(ctx, reserved)
		logger.Ctx(ctx).Info().
			Strs("failed_skus", failed).
			Msg("Synchronous reserve rejected: insufficient stock.")
		return &ReserveResult{Success: false, FailedSkus: failed}, nil
	}

	// 同步路径没有后续的支付确认，预留即消耗:
	// 记一条 CONFIRMED 预占作为审计记录。
	reservation, err := domain.NewReservation("RES-"+uuid.NewString(), items)
	if err != nil {
		s.creditBack(ctx, reserved)
		return nil, err
	}
	if err := reservation.Confirm(); err != nil {
		return nil, err
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		s.creditBack(ctx, reserved)
		return nil, fmt.Errorf("failed to record synchronous reservation: %w", err)
	}

	return &ReserveResult{Success: true, FailedSkus: []string{}}, nil
}

// creditBack 把同步路径已扣减的前缀补回可用池。
func (s *StockService) creditBack(ctx context.Context, reserved []domain.ReservationItem) {
	for _, item := range reserved {
		if err := s.stocks.CreditStock(ctx, item.Sku, item.Quantity); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("sku", item.Sku).
				Msg("CRITICAL: failed to credit back stock, manual reconciliation required.")
		}
	}
}

// Restock 补货入口。
func (s *StockService) Restock(ctx context.Context, sku string, qty int) error {
	ctx, span := s.tracer.Start(ctx, "stock.Restock")
	defer span.End()
	span.SetAttributes(attribute.String("sku", sku), attribute.Int("quantity", qty))

	if sku == "" || qty <= 0 {
		return domain.ErrInvalidItem
	}
	return s.stocks.CreditStock(ctx, sku, qty)
}

// GetStock 查询一条台账记录。同一 SKU 的并发查询只打一次数据库。
func (s *StockService) GetStock(ctx context.Context, sku string) (*domain.ProductStock, error) {
	ctx, span := s.tracer.Start(ctx, "stock.Get")
	defer span.End()

	v, err, _ := s.lookups.Do(sku, func() (interface{}, error) {
		return s.stocks.FindBySku(ctx, sku)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ProductStock), nil
}
