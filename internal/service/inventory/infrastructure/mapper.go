// internal/service/inventory/infrastructure/mapper.go
package infrastructure

import (
	"eplatform/internal/service/inventory/domain"
)

// ToDomainStock 将数据库模型转换为领域模型。
func ToDomainStock(m *ProductStockModel) *domain.ProductStock {
	return &domain.ProductStock{
		Sku:       m.Sku,
		Available: m.Available,
		Reserved:  m.Reserved,
		Version:   m.Version,
	}
}

// ToDomainReservation 将数据库模型转换为领域模型。
func ToDomainReservation(m *ReservationModel) *domain.Reservation {
	return &domain.Reservation{
		OrderID:   m.OrderID,
		Status:    domain.ReservationStatus(m.Status),
		Items:     m.Items,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToReservationModel 将领域模型转换为数据库模型。
func ToReservationModel(r *domain.Reservation) *ReservationModel {
	return &ReservationModel{
		OrderID:   r.OrderID,
		Status:    string(r.Status),
		Items:     r.Items,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
