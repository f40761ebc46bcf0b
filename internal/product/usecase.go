package product

import (
	"context"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
)

type UseCase interface {
	// Variant provisioning workflow
	CreateVariantGroup(ctx context.Context, input *dto.CreateVariantGroupInput) (*dto.VariantGroupResponse, error)
	UpdateVariantGroup(ctx context.Context, groupID string, input *dto.UpdateVariantGroupInput) (*dto.VariantGroupResponse, error)
	GetVariantGroup(ctx context.Context, groupID string) (*dto.VariantGroupResponse, error)

	// Standalone products
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]dto.ProductResponse, int, error)
	DeleteProduct(ctx context.Context, id string) error
}

// TxManager wraps a unit of work in one database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
