package order

import (
	"context"
	"time"

	"github.com/wholesaleops/stockledger/internal/model"
)

type Repository interface {
	// GetByBillID returns nil, nil when no bill matches; callers rely on this
	// to probe uniqueness without treating "not found" as a failure.
	GetByBillID(ctx context.Context, billID string) (*model.Order, error)

	// Upsert writes the order header keyed by bill id, so a retried
	// fulfillment attempt can re-run it.
	Upsert(ctx context.Context, ord *model.Order) error

	// ReplaceItems deletes any lines already written for the bill and bulk
	// inserts the given ones.
	ReplaceItems(ctx context.Context, billID string, items []model.OrderItem) error

	// MarkCancelled sets status and return date to absolute values.
	MarkCancelled(ctx context.Context, billID string, returnDate time.Time) error

	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	ListItems(ctx context.Context, billID string) ([]model.OrderItem, error)
}
