package dto

import "github.com/purushotam56/hatiri-storefront-service/internal/model"

type OrderFilters struct {
	Status        string
	CustomerPhone string
	Page          int
	PageSize      int
}

type SetStatusResult struct {
	Order       *model.Order            `json:"order"`
	Adjustments []model.StockAdjustment `json:"stock_adjustments"`
}
