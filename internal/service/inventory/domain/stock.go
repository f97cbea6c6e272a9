// internal/service/inventory/domain/stock.go
package domain

// ProductStock 是每个 SKU 的库存台账记录。
// available 与 reserved 永远非负；锁定把数量从 available 挪到 reserved，
// 释放反向挪回，确认则把 reserved 直接扣掉（已消耗的库存不再回到可用池）。
// Version 随每次条件更新递增，是存储层乐观并发的标记。
type ProductStock struct {
	Sku       string
	Available int
	Reserved  int
	Version   int64
}

// NewProductStock 创建一条新的台账记录。
func NewProductStock(sku string, available int) *ProductStock {
	return &ProductStock{Sku: sku, Available: available}
}

// Lock 尝试锁定 qty 个库存。数量不足或 qty 非正时返回 false 且状态不变。
func (s *ProductStock) Lock(qty int) bool {
	if qty <= 0 || s.Available < qty {
		return false
	}
	s.Available -= qty
	s.Reserved += qty
	return true
}

// Confirm 把 qty 个已锁定库存标记为已消耗。
func (s *ProductStock) Confirm(qty int) bool {
	if qty <= 0 || s.Reserved < qty {
		return false
	}
	s.Reserved -= qty
	return true
}

// Release 把 qty 个已锁定库存放回可用池。
func (s *ProductStock) Release(qty int) bool {
	if qty <= 0 || s.Reserved < qty {
		return false
	}
	s.Reserved -= qty
	s.Available += qty
	return true
}

// Credit 无条件补货。
func (s *ProductStock) Credit(qty int) {
	s.Available += qty
}
