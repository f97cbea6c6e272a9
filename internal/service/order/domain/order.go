// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

// OrderItem 订单行项目。
type OrderItem struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Order 是订单聚合的根实体。
// 下单后订单只等待支付结果事件: 库存与支付的全部协调都发生在
// 事件编排里，订单侧只做状态收敛。
type Order struct {
	ID               string
	Items            []OrderItem
	TotalAmountCents int64
	Currency         string
	State            State
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder 用于创建一个新的订单实例。
func NewOrder(id string, items []OrderItem, totalAmountCents int64, currency string) (*Order, error) {
	if id == "" || len(items) == 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}
	for _, item := range items {
		if item.Sku == "" || item.Quantity <= 0 {
			return nil, errors.New("order item requires sku and positive quantity")
		}
	}
	now := time.Now()
	return &Order{
		ID:               id,
		Items:            items,
		TotalAmountCents: totalAmountCents,
		Currency:         currency,
		State:            StatePlaced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// MarkAsPaid 支付成功后的状态收敛。
func (o *Order) MarkAsPaid() error {
	if o.State != StatePlaced {
		return errors.New("only placed orders can be marked as paid")
	}
	o.State = StatePaid
	o.UpdatedAt = time.Now()
	return nil
}

// MarkAsCancelled 支付失败 (包括库存被拒合成的失败) 后的状态收敛。
func (o *Order) MarkAsCancelled(reason string) error {
	if o.State != StatePlaced {
		return errors.New("only placed orders can be cancelled")
	}
	o.State = StateCancelled
	o.FailureReason = reason
	o.UpdatedAt = time.Now()
	return nil
}
