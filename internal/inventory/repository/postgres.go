package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/wholesaleops/stockledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// tableName validates a caller-supplied table against the allowlist so it can
// be interpolated into SQL safely.
func tableName(table string) (string, error) {
	if !model.IsStockTable(table) {
		return "", fmt.Errorf("unknown stock table: %s", table)
	}
	return table, nil
}

func (r *PGRepository) List(ctx context.Context, table, search string) ([]model.StockItem, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT * FROM %s`, t)
	args := []interface{}{}
	if search != "" {
		query += ` WHERE item_name ILIKE $1 OR article_number ILIKE $1 OR item_category ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	var items []model.StockItem
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) GetByID(ctx context.Context, table, id string) (*model.StockItem, error) {
	t, err := tableName(table)
	if err != nil {
		return nil, err
	}

	var item model.StockItem
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, t)
	err = r.DB.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) Create(ctx context.Context, table string, item *model.StockItem) error {
	t, err := tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (
            id, item_category, item_name, article_number, carton_number,
            quantity_remaining_dozens, amount_sold_dozens, sold_in_bills,
            supplier, item_comment
        )
        VALUES (
            :id, :item_category, :item_name, :article_number, :carton_number,
            :quantity_remaining_dozens, :amount_sold_dozens, :sold_in_bills,
            :supplier, :item_comment
        )
    `, t)
	_, err = r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) Update(ctx context.Context, table string, item *model.StockItem) error {
	t, err := tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
        UPDATE %s
        SET item_category = :item_category,
            item_name = :item_name,
            article_number = :article_number,
            carton_number = :carton_number,
            quantity_remaining_dozens = :quantity_remaining_dozens,
            supplier = :supplier
        WHERE id = :id
    `, t)
	_, err = r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) UpdateComment(ctx context.Context, table, id, comment string) error {
	t, err := tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET item_comment = $2 WHERE id = $1`, t)
	_, err = r.DB.ExecContext(ctx, query, id, comment)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, table, id string) error {
	t, err := tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t)
	_, err = r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PGRepository) UpdateStockCounters(ctx context.Context, table, id string, remaining, amountSold decimal.Decimal, soldInBills string) error {
	t, err := tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
        UPDATE %s
        SET quantity_remaining_dozens = $2,
            amount_sold_dozens = $3,
            sold_in_bills = $4
        WHERE id = $1
    `, t)
	_, err = r.DB.ExecContext(ctx, query, id, remaining, amountSold, soldInBills)
	return err
}
