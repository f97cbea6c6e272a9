// internal/service/order/domain/state.go
package domain

// State 定义了订单的生命周期状态
type State string

const (
	StatePlaced    State = "PLACED"    // 已下单，等待库存与支付结果
	StatePaid      State = "PAID"      // 支付成功
	StateCancelled State = "CANCELLED" // 支付失败或库存被拒
)
