// internal/service/inventory/domain/reservation.go
package domain

import (
	"time"
)

// ReservationStatus 定义了预占的生命周期状态。
// 状态流转是单向的: PENDING -> CONFIRMED 或 PENDING -> CANCELLED，
// 进入终态后不再变化。
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ReservationItem 预占的行项目，创建后不可变。
type ReservationItem struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Reservation 是预占 Saga 的聚合根，每个订单恰好一条。
// OrderID 唯一，也是幂等边界；记录永不删除，作为审计轨迹保留。
type Reservation struct {
	OrderID   string
	Status    ReservationStatus
	Items     []ReservationItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation 校验行项目并创建一个 PENDING 状态的预占。
func NewReservation(orderID string, items []ReservationItem) (*Reservation, error) {
	if orderID == "" {
		return nil, ErrEmptyOrderID
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if item.Sku == "" || item.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
	}
	now := time.Now()
	return &Reservation{
		OrderID:   orderID,
		Status:    StatusPending,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Confirm 将预占标记为已确认。只允许从 PENDING 流转。
func (r *Reservation) Confirm() error {
	if r.Status != StatusPending {
		return ErrInvalidReservationState
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel 将预占标记为已取消。只允许从 PENDING 流转。
func (r *Reservation) Cancel() error {
	if r.Status != StatusPending {
		return ErrInvalidReservationState
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// IsPending 返回预占是否仍在等待支付结果。
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}
