package order

import (
	"context"
	"time"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// SetStatus validates the transition, reconciles stock, and persists the
	// new status as one atomic unit. When a caller organisation is present in
	// ctx it must own at least one item in the order.
	SetStatus(ctx context.Context, orderID string, next model.OrderStatus) (*dto.SetStatusResult, error)
}

// TxManager wraps a unit of work in one database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes status changes for the same order across instances.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// Publisher emits order events after a transition commits.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}
