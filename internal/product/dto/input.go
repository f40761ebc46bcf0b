package dto

type VariantInput struct {
	ID            string   `json:"id"` // Set on update for an existing variant
	Label         string   `json:"label" binding:"required"`
	SKUSuffix     string   `json:"sku_suffix" binding:"required"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	Quantity      float64  `json:"quantity" binding:"required,gt=0"`
	Unit          string   `json:"unit" binding:"required"`
	// Stock must be present under the independent merge policy; nil means
	// the caller did not supply one.
	Stock          *int64   `json:"stock"`
	BannerKey      string   `json:"banner_key"`
	GalleryKeys    []string `json:"gallery_keys"`
	UseSharedMedia bool     `json:"use_shared_media"`
}

type CreateVariantGroupInput struct {
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	BaseSKU        string         `json:"base_sku" binding:"required"`
	Unit           string         `json:"unit" binding:"required"`
	StockMergeType string         `json:"stock_merge_type" binding:"required"`
	BaseStock      *int64         `json:"base_stock"`
	BannerKey      string         `json:"banner_key"`
	GalleryKeys    []string       `json:"gallery_keys"`
	Variants       []VariantInput `json:"variants" binding:"required,dive"`
}

type UpdateVariantGroupInput struct {
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	BaseSKU        string         `json:"base_sku" binding:"required"`
	Unit           string         `json:"unit" binding:"required"`
	StockMergeType string         `json:"stock_merge_type" binding:"required"`
	BaseStock      *int64         `json:"base_stock"`
	BannerKey      string         `json:"banner_key"`
	GalleryKeys    []string       `json:"gallery_keys"`
	Variants       []VariantInput `json:"variants" binding:"required,dive"`
}

type CreateProductInput struct {
	Name          string   `json:"name" binding:"required"`
	SKUSuffix     string   `json:"sku_suffix" binding:"required"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	Stock         int64    `json:"stock"`
	Unit          string   `json:"unit" binding:"required"`
	Quantity      float64  `json:"quantity" binding:"required,gt=0"`
	BannerKey     string   `json:"banner_key"`
	GalleryKeys   []string `json:"gallery_keys"`
}

type UpdateProductInput struct {
	ID            string   `json:"-"`
	Name          string   `json:"name" binding:"required"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price"`
	Stock         int64    `json:"stock"`
	Unit          string   `json:"unit" binding:"required"`
	Quantity      float64  `json:"quantity" binding:"required,gt=0"`
	BannerKey     string   `json:"banner_key"`
	GalleryKeys   []string `json:"gallery_keys"`
	IsActive      bool     `json:"is_active"`
}
