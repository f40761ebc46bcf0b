package order

import (
	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
)

// forward is the linear fulfillment pipeline. Each status may only advance
// to its immediate successor; cancellation is handled separately.
var forward = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:        model.OrderStatusConfirmed,
	model.OrderStatusConfirmed:      model.OrderStatusPreparing,
	model.OrderStatusPreparing:      model.OrderStatusReady,
	model.OrderStatusReady:          model.OrderStatusOutForDelivery,
	model.OrderStatusOutForDelivery: model.OrderStatusDelivered,
}

var knownStatuses = map[model.OrderStatus]bool{
	model.OrderStatusPending:        true,
	model.OrderStatusConfirmed:      true,
	model.OrderStatusPreparing:      true,
	model.OrderStatusReady:          true,
	model.OrderStatusOutForDelivery: true,
	model.OrderStatusDelivered:      true,
	model.OrderStatusCancelled:      true,
}

// AllowedNext returns the set of statuses reachable from s.
func AllowedNext(s model.OrderStatus) []model.OrderStatus {
	if model.IsTerminalStatus(s) {
		return nil
	}
	next := []model.OrderStatus{}
	if f, ok := forward[s]; ok {
		next = append(next, f)
	}
	return append(next, model.OrderStatusCancelled)
}

// ValidateTransition is a pure predicate over the status graph. It never
// touches stock or any other state.
func ValidateTransition(from, to model.OrderStatus) error {
	if !knownStatuses[from] {
		return apperrors.Validation("unknown order status %q", from)
	}
	if !knownStatuses[to] {
		return apperrors.Validation("unknown order status %q", to)
	}
	if model.IsTerminalStatus(from) {
		return apperrors.InvalidTransition(string(from), string(to))
	}
	if to == model.OrderStatusCancelled {
		return nil
	}
	if forward[from] == to {
		return nil
	}
	return apperrors.InvalidTransition(string(from), string(to))
}
