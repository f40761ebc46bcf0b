package model

import "github.com/lib/pq"

// StockMergeType decides which counter is authoritative for the variants of
// a group.
type StockMergeType string

const (
	// StockMergeMerged: all variants draw from ProductGroup.BaseStock;
	// per-variant Stock is informational and kept at zero.
	StockMergeMerged StockMergeType = "merged"
	// StockMergeIndependent: every variant tracks its own Stock;
	// ProductGroup.BaseStock is unused and kept at zero.
	StockMergeIndependent StockMergeType = "independent"
)

type ProductGroup struct {
	BaseModel
	OrgID          string         `db:"org_id" json:"org_id"`
	Name           string         `db:"name" json:"name"`
	Description    *string        `db:"description" json:"description"`
	BaseSKU        string         `db:"base_sku" json:"base_sku"`
	BaseStock      int64          `db:"base_stock" json:"base_stock"`
	Unit           Unit           `db:"unit" json:"unit"`
	StockMergeType StockMergeType `db:"stock_merge_type" json:"stock_merge_type"`
	BannerURL      *string        `db:"banner_url" json:"banner_url"`
	GalleryURLs    pq.StringArray `db:"gallery_urls" json:"gallery_urls"`
	Variants       []Product      `db:"-" json:"variants,omitempty"`
}

type Product struct {
	BaseModel
	OrgID         string         `db:"org_id" json:"org_id"`
	GroupID       *string        `db:"group_id" json:"group_id"` // Nullable: nil means standalone
	Name          string         `db:"name" json:"name"`
	SKU           string         `db:"sku" json:"sku"`
	Price         float64        `db:"price" json:"price"`
	DiscountPrice *float64       `db:"discount_price" json:"discount_price"`
	Stock         int64          `db:"stock" json:"stock"`
	Unit          Unit           `db:"unit" json:"unit"`
	Quantity      float64        `db:"quantity" json:"quantity"`
	BannerURL     *string        `db:"banner_url" json:"banner_url"`
	GalleryURLs   pq.StringArray `db:"gallery_urls" json:"gallery_urls"`
	IsActive      bool           `db:"is_active" json:"is_active"`
}

// DisplayStock resolves the stock a storefront should show for p. Under a
// merged group that is the shared pool, otherwise the product's own counter.
func (p *Product) DisplayStock(g *ProductGroup) int64 {
	if g != nil && g.StockMergeType == StockMergeMerged {
		return g.BaseStock
	}
	return p.Stock
}

// IsStandalone reports whether the product sells outside any variant group.
func (p *Product) IsStandalone() bool {
	return p.GroupID == nil || *p.GroupID == ""
}
