package stock

import (
	"context"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
)

// UseCase is the stock ledger. It owns the "which counter is authoritative"
// decision so no call site ever branches on merge policy itself.
type UseCase interface {
	// AdjustForStatusChange applies the stock deltas implied by an order
	// status transition. It must run inside the caller's transaction: any
	// failure leaves every counter untouched. Transitions that imply no
	// stock movement return an empty adjustment list.
	AdjustForStatusChange(ctx context.Context, order *model.Order, from, to model.OrderStatus) ([]model.StockAdjustment, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
