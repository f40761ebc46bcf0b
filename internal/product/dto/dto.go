package dto

import "github.com/purushotam56/hatiri-storefront-service/internal/model"

type ProductFilters struct {
	OrgID       string
	GroupID     string
	IsActive    *bool
	SearchQuery string // For name or sku search
	SortBy      string // name, price, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}

// ProductResponse carries the product with its stock resolved through the
// group's merge policy, so clients never read the wrong counter.
type ProductResponse struct {
	model.Product
	DisplayStock int64 `json:"display_stock"`
}

type VariantGroupResponse struct {
	Group    *model.ProductGroup `json:"product_group"`
	Variants []ProductResponse   `json:"variants"`
}
