package model

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type Order struct {
	BaseModel
	CustomerName    string      `db:"customer_name" json:"customer_name"`
	CustomerPhone   string      `db:"customer_phone" json:"customer_phone"`
	DeliveryAddress *string     `db:"delivery_address" json:"delivery_address"`
	Status          OrderStatus `db:"status" json:"status"`
	TotalAmount     float64     `db:"total_amount" json:"total_amount"`
	// StockCommittedAt marks the moment stock was debited for this order.
	// Nil means no debit has happened yet; the reconciler uses it to keep
	// the debit/credit cycle at exactly once per order.
	StockCommittedAt *time.Time  `db:"stock_committed_at" json:"stock_committed_at"`
	Items            []OrderItem `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"` // Price captured at order time
}

// IsTerminalStatus reports whether no further transition may leave s.
func IsTerminalStatus(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
