package dto

type CreateOrderItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderInput struct {
	CustomerName    string                 `json:"customer_name" binding:"required"`
	CustomerPhone   string                 `json:"customer_phone" binding:"required"`
	DeliveryAddress string                 `json:"delivery_address"`
	Items           []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

type SetStatusInput struct {
	Status string `json:"status" binding:"required"`
}
