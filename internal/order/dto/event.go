package dto

import (
	"time"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
)

const (
	EventOrderStatusChanged    = "OrderStatusChanged"
	EventDeliveryStatusChanged = "DeliveryStatusChanged"
)

// OrderStatusChangedEvent is published after a status transition commits.
type OrderStatusChangedEvent struct {
	EventID   string                    `json:"event_id"`
	EventType string                    `json:"event_type"`
	Payload   OrderStatusChangedPayload `json:"payload"`
	Timestamp time.Time                 `json:"timestamp"`
}

type OrderStatusChangedPayload struct {
	OrderID        string                  `json:"order_id"`
	PreviousStatus string                  `json:"previous_status"`
	NewStatus      string                  `json:"new_status"`
	Adjustments    []model.StockAdjustment `json:"stock_adjustments,omitempty"`
}

// DeliveryStatusChangedEvent is what the delivery service publishes when a
// rider advances an order through the fulfillment pipeline.
type DeliveryStatusChangedEvent struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Payload   DeliveryStatusPayload `json:"payload"`
	Timestamp time.Time             `json:"timestamp"`
}

type DeliveryStatusPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
