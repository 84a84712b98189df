package models

type Quote struct {
	Subtotal                 float64 `json:"subtotal"`
	PromoCode                string  `json:"promo_code,omitempty"`
	DiscountPercent          int     `json:"discount_percent"`
	Discount                 float64 `json:"discount"`
	Shipping                 float64 `json:"shipping"`
	RemainingForFreeShipping float64 `json:"remaining_for_free_shipping"`
	Total                    float64 `json:"total"`
}

type OrderConfirmation struct {
	OrderID int        `json:"order_id"`
	Status  string     `json:"status"`
	Quote   Quote      `json:"quote"`
	Items   []CartItem `json:"items"`
}
