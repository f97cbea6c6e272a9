// internal/events/events.go
package events

// 三个服务之间唯一的契约就是这几个主题和消息结构。
// 消息 Key 一律使用 orderId，保证同一订单的事件落在同一分区、按序消费。
const (
	TopicOrderPlaced       = "order.placed"
	TopicInventoryReserved = "inventory.reserved"
	TopicInventoryRejected = "inventory.rejected"
	TopicPaymentSucceeded  = "payment.succeeded"
	TopicPaymentFailed     = "payment.failed"
)

// OrderItem 订单行项目。
type OrderItem struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// OrderPlacedEvent 订单服务在下单成功后发布。
type OrderPlacedEvent struct {
	OrderID          string      `json:"orderId"`
	Items            []OrderItem `json:"items"`
	TotalAmountCents int64       `json:"totalAmountCents"`
	Currency         string      `json:"currency"`
}

// InventoryReservedEvent 库存服务在全部行项目锁定成功后发布。
type InventoryReservedEvent struct {
	OrderID string `json:"orderId"`
}

// InventoryRejectedEvent 库存服务在预占失败后发布。
type InventoryRejectedEvent struct {
	OrderID    string `json:"orderId"`
	FailedSkus string `json:"failedSkus"`
	Reason     string `json:"reason"`
}

// PaymentSucceededEvent 支付服务在扣款成功后发布。
type PaymentSucceededEvent struct {
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
}

// PaymentFailedEvent 支付失败，或库存被拒后由支付服务合成，
// 以便订单状态在支付网关从未被调用的情况下也能收敛。
type PaymentFailedEvent struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}
