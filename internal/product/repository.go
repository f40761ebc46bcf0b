package product

import (
	"context"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
)

type Repository interface {
	// Variant groups
	CreateGroup(ctx context.Context, group *model.ProductGroup) error
	UpdateGroup(ctx context.Context, group *model.ProductGroup) error
	GetGroupByID(ctx context.Context, id string) (*model.ProductGroup, error)
	FindGroupsByIDs(ctx context.Context, ids []string) ([]model.ProductGroup, error)
	FindByGroup(ctx context.Context, groupID string) ([]model.Product, error)

	// Products
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Delete(ctx context.Context, id string) error

	// Check SKU uniqueness per organisation
	IsSKUUnique(ctx context.Context, orgID, sku, excludeID string) (bool, error)
}
