package order

import (
	"context"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// GetByIDForUpdate row-locks the order so concurrent status changes for
	// the same order serialize at the database even if the distributed lock
	// is lost.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error)

	UpdateStatus(ctx context.Context, o *model.Order) error
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// OwnedByOrg reports whether at least one item in the order references a
	// product belonging to the organisation.
	OwnedByOrg(ctx context.Context, orderID, orgID string) (bool, error)
}
