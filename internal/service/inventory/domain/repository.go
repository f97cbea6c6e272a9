// internal/service/inventory/domain/repository.go
package domain

import (
	"context"
	"time"
)

// StockRepository 定义了库存台账的持久化接口。
// 三个条件变更 (Lock/Confirm/Release) 必须是针对单行的原子条件更新，
// 返回 false 表示守卫条件不满足、没有行被改动: 这是普通控制流，
// 不是错误。error 只用于基础设施故障。
type StockRepository interface {
	// EnsureExists 在首次引用未知 SKU 时惰性建行，available=0。
	EnsureExists(ctx context.Context, sku string) error

	// FindBySku 查询一条台账记录。
	FindBySku(ctx context.Context, sku string) (*ProductStock, error)

	// LockStock 当 available >= qty 且 qty > 0 时:
	// available -= qty, reserved += qty。
	LockStock(ctx context.Context, sku string, qty int) (bool, error)

	// ConfirmStock 当 reserved >= qty 时: reserved -= qty。
	// 失败意味着确认量超过了锁定量，属于协议异常。
	ConfirmStock(ctx context.Context, sku string, qty int) (bool, error)

	// ReleaseStock 当 reserved >= qty 时:
	// available += qty, reserved -= qty。补偿与过期回收共用。
	ReleaseStock(ctx context.Context, sku string, qty int) (bool, error)

	// CreditStock 无条件补货: available += qty。
	CreditStock(ctx context.Context, sku string, qty int) error

	// TryReserve 同步下单路径使用: available >= qty 时 available -= qty。
	TryReserve(ctx context.Context, sku string, qty int) (bool, error)
}

// ReservationRepository 定义了预占聚合的持久化接口。
type ReservationRepository interface {
	// Create 插入一条新预占。orderId 已存在时返回 ErrDuplicateReservation。
	Create(ctx context.Context, reservation *Reservation) error

	// Save 保存状态流转后的预占。
	Save(ctx context.Context, reservation *Reservation) error

	// FindByOrderID 按 orderId 查询，未知时返回 ErrReservationNotFound。
	FindByOrderID(ctx context.Context, orderID string) (*Reservation, error)

	// FindPendingBefore 返回 createdAt 早于 threshold 的全部 PENDING 预占。
	FindPendingBefore(ctx context.Context, threshold time.Time) ([]*Reservation, error)
}
