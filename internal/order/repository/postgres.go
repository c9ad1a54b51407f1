package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wholesaleops/stockledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByBillID(ctx context.Context, billID string) (*model.Order, error) {
	var ord model.Order
	query := `SELECT * FROM orders WHERE bill_id = $1`
	err := r.DB.GetContext(ctx, &ord, query, billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ord, nil
}

func (r *PGRepository) Upsert(ctx context.Context, ord *model.Order) error {
	query := `
        INSERT INTO orders (
            bill_id, customer_first_name, customer_last_name, customer_phone,
            comments, total_items, total_quantity_dozens, status, order_date
        )
        VALUES (
            :bill_id, :customer_first_name, :customer_last_name, :customer_phone,
            :comments, :total_items, :total_quantity_dozens, :status, :order_date
        )
        ON CONFLICT (bill_id)
        DO UPDATE SET
            customer_first_name = EXCLUDED.customer_first_name,
            customer_last_name = EXCLUDED.customer_last_name,
            customer_phone = EXCLUDED.customer_phone,
            comments = EXCLUDED.comments,
            total_items = EXCLUDED.total_items,
            total_quantity_dozens = EXCLUDED.total_quantity_dozens
    `
	_, err := r.DB.NamedExecContext(ctx, query, ord)
	return err
}

func (r *PGRepository) ReplaceItems(ctx context.Context, billID string, items []model.OrderItem) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE bill_id = $1`, billID); err != nil {
		return err
	}

	query := `
        INSERT INTO order_items (
            id, bill_id, item_id, item_table, quantity_dozens,
            item_category, item_name, article_number
        )
        VALUES (
            :id, :bill_id, :item_id, :item_table, :quantity_dozens,
            :item_category, :item_name, :article_number
        )
    `
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepository) MarkCancelled(ctx context.Context, billID string, returnDate time.Time) error {
	query := `UPDATE orders SET status = $2, return_date = $3 WHERE bill_id = $1`
	_, err := r.DB.ExecContext(ctx, query, billID, model.OrderStatusCancelled, returnDate)
	return err
}

func (r *PGRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	query := `SELECT * FROM orders ORDER BY order_date DESC LIMIT $1`
	err := r.DB.SelectContext(ctx, &orders, query, limit)
	return orders, err
}

func (r *PGRepository) ListItems(ctx context.Context, billID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	query := `SELECT * FROM order_items WHERE bill_id = $1`
	err := r.DB.SelectContext(ctx, &items, query, billID)
	return items, err
}
