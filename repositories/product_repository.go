package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ooru-foods/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TableEnhancedProducts = "enhanced_products"
	TableProducts         = "products"
	TableTestProducts     = "test_products"
)

const productColumns = `id, name, description, price, image_url, category, spice_level, is_vegetarian, stock, created_at`

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func validTable(table string) error {
	switch table {
	case TableEnhancedProducts, TableProducts, TableTestProducts:
		return nil
	}
	return fmt.Errorf("unknown product table %q", table)
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var (
		p         models.Product
		spice     *string
		createdAt time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category,
		&spice, &p.IsVegetarian, &p.Stock, &createdAt)
	if err != nil {
		return p, err
	}
	if spice != nil {
		level := models.SpiceLevel(*spice)
		p.SpiceLevel = &level
	}
	p.CreatedAt = &createdAt
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *ProductRepository) List(ctx context.Context, page, limit int) ([]models.Product, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	products, err := collectProducts(rows)
	return products, total, err
}

func (r *ProductRepository) Search(ctx context.Context, term string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name ILIKE $1 OR description ILIKE $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByIDs loads every product whose id is in ids from table in a single query.
func (r *ProductRepository) GetByIDs(ctx context.Context, table string, ids []int) ([]models.Product, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM ` + table + ` WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, image_url, category, spice_level, is_vegetarian, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	var createdAt time.Time
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.ImageURL, product.Category,
		product.SpiceLevel, product.IsVegetarian, product.Stock,
	).Scan(&product.ID, &createdAt)
	if err != nil {
		return err
	}
	product.CreatedAt = &createdAt
	return nil
}
