package repositories

import (
	"context"
	"errors"
	"fmt"

	"ooru-foods/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CartRepository stores cart rows in the hosted orders_cart table.
type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) List(ctx context.Context, sessionID string) ([]models.CartRow, error) {
	query := `SELECT id::text, session_id, product_id, quantity FROM orders_cart WHERE session_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := []models.CartRow{}
	for rows.Next() {
		var row models.CartRow
		if err := rows.Scan(&row.ID, &row.SessionID, &row.ProductID, &row.Quantity); err != nil {
			return nil, err
		}
		cart = append(cart, row)
	}
	return cart, rows.Err()
}

func (r *CartRepository) FindByProduct(ctx context.Context, sessionID string, productID int) (*models.CartRow, error) {
	query := `SELECT id::text, session_id, product_id, quantity FROM orders_cart WHERE session_id = $1 AND product_id = $2`

	var row models.CartRow
	err := r.db.QueryRow(ctx, query, sessionID, productID).Scan(&row.ID, &row.SessionID, &row.ProductID, &row.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cart row for product %d: %w", productID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *CartRepository) Insert(ctx context.Context, row models.CartRow) (models.CartRow, error) {
	query := `
		INSERT INTO orders_cart (session_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`
	err := r.db.QueryRow(ctx, query, row.SessionID, row.ProductID, row.Quantity).Scan(&row.ID)
	if isUniqueViolation(err) {
		return row, fmt.Errorf("cart row for product %d: %w", row.ProductID, models.ErrConflict)
	}
	return row, err
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, sessionID, id string, quantity int) (models.CartRow, error) {
	query := `
		UPDATE orders_cart SET quantity = $1, updated_at = NOW()
		WHERE session_id = $2 AND id::text = $3
		RETURNING id::text, session_id, product_id, quantity
	`
	var row models.CartRow
	err := r.db.QueryRow(ctx, query, quantity, sessionID, id).Scan(&row.ID, &row.SessionID, &row.ProductID, &row.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return row, fmt.Errorf("cart row %s: %w", id, models.ErrNotFound)
	}
	return row, err
}

func (r *CartRepository) Delete(ctx context.Context, sessionID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders_cart WHERE session_id = $1 AND id::text = $2`, sessionID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart row %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM orders_cart WHERE session_id = $1`, sessionID)
	return err
}
