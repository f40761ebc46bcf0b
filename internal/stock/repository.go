package stock

import (
	"context"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
)

type Repository interface {
	// GetProductsForUpdate loads and row-locks the products so concurrent
	// adjustments against the same rows serialize.
	GetProductsForUpdate(ctx context.Context, ids []string) ([]model.Product, error)
	GetGroupsForUpdate(ctx context.Context, ids []string) ([]model.ProductGroup, error)

	// ApplyProductDelta / ApplyGroupDelta add delta to the authoritative
	// counter, guarded so the result can never go negative. They return the
	// counter value before and after the update.
	ApplyProductDelta(ctx context.Context, productID string, delta int64) (before, after int64, err error)
	ApplyGroupDelta(ctx context.Context, groupID string, delta int64) (before, after int64, err error)

	LogMovement(ctx context.Context, m *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
