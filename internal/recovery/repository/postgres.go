package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/recovery"
)

type PGRepository struct {
	db *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) recovery.Repository {
	return &PGRepository{db: db}
}

func (r *PGRepository) InsertFailedOperation(ctx context.Context, op *model.FailedOperation) error {
	query := `
		INSERT INTO failed_operations (operation_type, operation_data, error_message, retry_count, status)
		VALUES (:operation_type, :operation_data, :error_message, 0, :status)
	`
	if _, err := r.db.NamedExecContext(ctx, query, op); err != nil {
		return fmt.Errorf("recovery.PGRepository.InsertFailedOperation: %w", err)
	}
	return nil
}

func (r *PGRepository) ListPending(ctx context.Context, maxRetries int) ([]model.FailedOperation, error) {
	query := `
		SELECT id, operation_type, operation_data, error_message, retry_count, status, last_error, created_at
		FROM failed_operations
		WHERE status = $1 AND retry_count < $2
		ORDER BY created_at ASC
	`
	ops := []model.FailedOperation{}
	if err := r.db.SelectContext(ctx, &ops, query, model.FailedOpStatusPending, maxRetries); err != nil {
		return nil, fmt.Errorf("recovery.PGRepository.ListPending: %w", err)
	}
	return ops, nil
}

func (r *PGRepository) MarkCompleted(ctx context.Context, id int64) error {
	query := `UPDATE failed_operations SET status = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, model.FailedOpStatusCompleted, id); err != nil {
		return fmt.Errorf("recovery.PGRepository.MarkCompleted: %w", err)
	}
	return nil
}

func (r *PGRepository) MarkRetried(ctx context.Context, id int64, lastError string, maxRetries int) error {
	query := `
		UPDATE failed_operations
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    status = CASE WHEN retry_count + 1 >= $2 THEN $3 ELSE status END
		WHERE id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, lastError, maxRetries, model.FailedOpStatusFailed, id); err != nil {
		return fmt.Errorf("recovery.PGRepository.MarkRetried: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertErrorRecord(ctx context.Context, rec *model.ErrorRecord) error {
	query := `
		INSERT INTO error_records (error_detail, source_table, record_id)
		VALUES (:error_detail, :source_table, :record_id)
	`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("recovery.PGRepository.InsertErrorRecord: %w", err)
	}
	return nil
}

func (r *PGRepository) ListErrorRecords(ctx context.Context, limit int) ([]model.ErrorRecord, error) {
	query := `
		SELECT id, error_detail, source_table, record_id, created_at
		FROM error_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	recs := []model.ErrorRecord{}
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("recovery.PGRepository.ListErrorRecords: %w", err)
	}
	return recs, nil
}
