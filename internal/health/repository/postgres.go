package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/wholesaleops/stockledger/internal/health"
	"github.com/wholesaleops/stockledger/internal/model"
)

type PGRepository struct {
	db *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) health.Repository {
	return &PGRepository{db: db}
}

func (r *PGRepository) ProbeOrders(ctx context.Context) error {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1 FROM orders LIMIT 1`); err != nil {
		// An empty table is still a reachable table.
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("health.PGRepository.ProbeOrders: %w", err)
	}
	return nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]health.LowStockItem, error) {
	items := []health.LowStockItem{}
	for _, table := range model.StockTables {
		query := fmt.Sprintf(`
			SELECT id, item_name, article_number, quantity_remaining_dozens
			FROM %s
			WHERE quantity_remaining_dozens < $1
			ORDER BY quantity_remaining_dozens ASC
		`, table)

		rows := []health.LowStockItem{}
		if err := r.db.SelectContext(ctx, &rows, query, threshold); err != nil {
			return nil, fmt.Errorf("health.PGRepository.ListLowStock %s: %w", table, err)
		}
		for i := range rows {
			rows[i].Table = table
		}
		items = append(items, rows...)
	}
	return items, nil
}

func (r *PGRepository) CountPendingFailedOps(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM failed_operations WHERE status = $1`
	if err := r.db.GetContext(ctx, &count, query, model.FailedOpStatusPending); err != nil {
		return 0, fmt.Errorf("health.PGRepository.CountPendingFailedOps: %w", err)
	}
	return count, nil
}

func (r *PGRepository) InsertSystemLog(ctx context.Context, log *model.SystemLog) error {
	query := `
		INSERT INTO system_logs (operation_type, details, status, duration_ms, timestamp)
		VALUES (:operation_type, :details, :status, :duration_ms, :timestamp)
	`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("health.PGRepository.InsertSystemLog: %w", err)
	}
	return nil
}
