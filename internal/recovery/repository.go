package recovery

import (
	"context"

	"github.com/wholesaleops/stockledger/internal/model"
)

type Repository interface {
	InsertFailedOperation(ctx context.Context, op *model.FailedOperation) error

	// ListPending returns queue entries still eligible for a recovery attempt,
	// oldest first.
	ListPending(ctx context.Context, maxRetries int) ([]model.FailedOperation, error)

	MarkCompleted(ctx context.Context, id int64) error

	// MarkRetried bumps retry_count and stores the latest error. Entries that
	// reach maxRetries are moved to the terminal failed status.
	MarkRetried(ctx context.Context, id int64, lastError string, maxRetries int) error

	InsertErrorRecord(ctx context.Context, rec *model.ErrorRecord) error
	ListErrorRecords(ctx context.Context, limit int) ([]model.ErrorRecord, error)
}
