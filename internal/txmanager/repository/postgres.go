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

func (r *PGRepository) Insert(ctx context.Context, log *model.TransactionLog) error {
	query := `
        INSERT INTO transaction_logs (
            transaction_id, operation_type, status, attempt_count,
            error_message, operation_data, resolved
        )
        VALUES (
            :transaction_id, :operation_type, :status, :attempt_count,
            :error_message, :operation_data, :resolved
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, log)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, transactionID, status string, errMessage *string, attemptCount int) error {
	query := `
        UPDATE transaction_logs
        SET status = $2, error_message = $3, attempt_count = $4, last_attempt = $5
        WHERE transaction_id = $1
    `
	_, err := r.DB.ExecContext(ctx, query, transactionID, status, errMessage, attemptCount, time.Now())
	return err
}

func (r *PGRepository) MarkResolved(ctx context.Context, transactionID, note string) error {
	query := `
        UPDATE transaction_logs
        SET status = $2, resolved = true, error_message = $3
        WHERE transaction_id = $1
    `
	_, err := r.DB.ExecContext(ctx, query, transactionID, model.TxStatusResolved, note)
	return err
}

func (r *PGRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.TransactionLog, error) {
	var entry model.TransactionLog
	query := `SELECT * FROM transaction_logs WHERE transaction_id = $1`
	err := r.DB.GetContext(ctx, &entry, query, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PGRepository) ListUnresolved(ctx context.Context) ([]model.TransactionLog, error) {
	var entries []model.TransactionLog
	query := `SELECT * FROM transaction_logs WHERE resolved = false ORDER BY created_at DESC`
	err := r.DB.SelectContext(ctx, &entries, query)
	return entries, err
}
