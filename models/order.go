package models

import "time"

// Orders are written only after payment succeeds.
const OrderStatusConfirmed = "confirmed"

type Order struct {
	ID          int         `json:"id"`
	SessionID   string      `json:"session_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID        int     `json:"id,omitempty"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
