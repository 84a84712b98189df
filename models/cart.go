package models

// CartRow is the persisted unit of a cart, independent of product details.
type CartRow struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartItem struct {
	ID        string   `json:"id"`
	ProductID int      `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"`
}

// Backend names the store that served a cart operation.
type Backend string

const (
	BackendRemote Backend = "remote"
	BackendLocal  Backend = "local"
)

type CartView struct {
	Items     []CartItem `json:"items"`
	CartCount int        `json:"cart_count"`
	Total     float64    `json:"total"`
	Backend   Backend    `json:"backend"`
	Notices   []string   `json:"notices,omitempty"`
}
