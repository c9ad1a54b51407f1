package txmanager

import (
	"context"

	"github.com/wholesaleops/stockledger/internal/model"
)

type Repository interface {
	// Insert writes the initial "started" row for a transaction.
	Insert(ctx context.Context, log *model.TransactionLog) error

	// UpdateStatus records the outcome of one attempt against an existing row.
	UpdateStatus(ctx context.Context, transactionID, status string, errMessage *string, attemptCount int) error

	// MarkResolved flips the row to resolved and stores the operator's note in
	// the error-message field. Safe to call repeatedly.
	MarkResolved(ctx context.Context, transactionID, note string) error

	// GetByTransactionID returns nil, nil when no row matches.
	GetByTransactionID(ctx context.Context, transactionID string) (*model.TransactionLog, error)

	// ListUnresolved returns rows with resolved = false, newest first.
	ListUnresolved(ctx context.Context) ([]model.TransactionLog, error)
}
