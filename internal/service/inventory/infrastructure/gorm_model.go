// internal/service/inventory/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"eplatform/internal/service/inventory/domain"
)

// ProductStockModel 对应数据库中的 product_stock 表。
// available/reserved 只通过条件 UPDATE 修改，version 随每次更新 +1。
type ProductStockModel struct {
	ID        uint   `gorm:"primaryKey"`
	Sku       string `gorm:"uniqueIndex:ux_stock_sku;size:64;not null"`
	Available int    `gorm:"not null;default:0"`
	Reserved  int    `gorm:"not null;default:0"`
	Version   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ProductStockModel) TableName() string {
	return "product_stock"
}

// ReservationModel 对应数据库中的 reservations 表。
// order_id 上的唯一约束是重复投递的最终兜底。
type ReservationModel struct {
	ID        uint                     `gorm:"primaryKey"`
	OrderID   string                   `gorm:"uniqueIndex:ux_reservation_order;size:64;not null"`
	Status    string                   `gorm:"size:16;not null"`
	Items     []domain.ReservationItem `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (ReservationModel) TableName() string {
	return "reservations"
}
