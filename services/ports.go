package services

import (
	"context"
	"io"

	"ooru-foods/models"
)

type RemoteCartStore interface {
	List(ctx context.Context, sessionID string) ([]models.CartRow, error)
	FindByProduct(ctx context.Context, sessionID string, productID int) (*models.CartRow, error)
	Insert(ctx context.Context, row models.CartRow) (models.CartRow, error)
	UpdateQuantity(ctx context.Context, sessionID, id string, quantity int) (models.CartRow, error)
	Delete(ctx context.Context, sessionID, id string) error
	Clear(ctx context.Context, sessionID string) error
}

type LocalCartStore interface {
	Load(ctx context.Context, sessionID string) ([]models.CartRow, error)
	Save(ctx context.Context, sessionID string, rows []models.CartRow) error
	Remove(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
}

type ProductStore interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	List(ctx context.Context, page, limit int) ([]models.Product, int, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	GetByIDs(ctx context.Context, table string, ids []int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

// ProductBatcher is the slice of the catalog the cart reconciler needs.
type ProductBatcher interface {
	GetBatch(ctx context.Context, ids []int) ([]models.Product, error)
}

type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, filename, folder string) (string, error)
}

type OrderMailer interface {
	SendOrderConfirmation(toEmail string, orderID int, total float64, items []models.CartItem) error
}
