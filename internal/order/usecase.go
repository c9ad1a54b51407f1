package order

import (
	"context"
	"time"

	"github.com/wholesaleops/stockledger/internal/model"
	"github.com/wholesaleops/stockledger/internal/order/dto"
)

type UseCase interface {
	// CreateOrder runs the fulfillment sequence: verify live stock, write the
	// bill header and lines, decrement stock, verify the result.
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)

	// ReturnOrder cancels a bill and restores every line's quantity to its
	// source inventory table.
	ReturnOrder(ctx context.Context, billID string) (*model.Order, error)

	GetBill(ctx context.Context, billID string) (*model.Order, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	ListItems(ctx context.Context, billID string) ([]model.OrderItem, error)
}

// Locker serializes fulfillment and return attempts for the same bill.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// FailureRecorder feeds the recovery queue after a sequence exhausts its
// retry budget. Recording is best-effort.
type FailureRecorder interface {
	Record(ctx context.Context, operationType string, data any, errMessage string)
}

// ErrorSink captures per-step diagnostics (error_records). Never blocks.
type ErrorSink interface {
	Record(ctx context.Context, err error, sourceTable, recordID string)
}
