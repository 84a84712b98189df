package models

type CreateProductRequest struct {
	Name         string  `json:"name" form:"name"`
	Description  string  `json:"description" form:"description"`
	Category     string  `json:"category" form:"category" binding:"required"`
	Price        float64 `json:"price" form:"price"`
	Stock        int     `json:"stock" form:"stock"`
	SpiceLevel   string  `json:"spice_level" form:"spice_level" binding:"omitempty,oneof=mild medium hot extra_hot"`
	IsVegetarian *bool   `json:"is_vegetarian" form:"is_vegetarian"`
	ImageURL     string  `json:"image_url" form:"image_url"`
}

type AddCartItemRequest struct {
	ProductID int `json:"product_id" binding:"required,gt=0"`
	Quantity  int `json:"quantity" binding:"omitempty,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type QuoteRequest struct {
	Subtotal  *float64 `json:"subtotal"`
	PromoCode string   `json:"promo_code"`
}

type CheckoutRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FullName  string `json:"full_name"`
	Address   string `json:"address"`
	PromoCode string `json:"promo_code"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type MetaData struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    MetaData    `json:"meta"`
}
