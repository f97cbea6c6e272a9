// internal/service/inventory/domain/errors.go
package domain

import "errors"

var (
	// ErrInsufficientStock 是业务拒绝，不是故障: 调用方用补偿和事件发布
	// 来处理它，台账层也绝不把它记成 error 级日志。
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrReservationNotFound 未知 orderId。
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrStockNotFound 查询了从未被引用过的 SKU。
	ErrStockNotFound = errors.New("stock record not found")

	// ErrInvalidReservationState 预占已经进入终态，不能再流转。
	ErrInvalidReservationState = errors.New("invalid reservation state")

	// ErrDuplicateReservation 同一 orderId 的重复创建。
	// 消费端把它当作"已处理过"对待，绝不二次锁库存。
	ErrDuplicateReservation = errors.New("reservation already exists for order")

	ErrEmptyOrderID = errors.New("order id must not be empty")
	ErrEmptyItems   = errors.New("reservation requires at least one item")
	ErrInvalidItem  = errors.New("reservation item requires sku and positive quantity")
)

// InsufficientStockError 标识第一个锁定失败的 SKU。
// 通过 Unwrap 关联到 ErrInsufficientStock，调用方既可以 errors.Is
// 分支判断，也可以 errors.As 取出具体 SKU。
type InsufficientStockError struct {
	Sku string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for SKU: " + e.Sku
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
