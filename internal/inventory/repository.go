package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wholesaleops/stockledger/internal/model"
)

// Repository reads and writes the category-partitioned stock tables. The
// table argument must be one of model.StockTables; implementations reject
// anything else before touching the store.
type Repository interface {
	List(ctx context.Context, table, search string) ([]model.StockItem, error)

	// GetByID returns nil, nil when the row does not exist.
	GetByID(ctx context.Context, table, id string) (*model.StockItem, error)

	Create(ctx context.Context, table string, item *model.StockItem) error
	Update(ctx context.Context, table string, item *model.StockItem) error
	UpdateComment(ctx context.Context, table, id, comment string) error
	Delete(ctx context.Context, table, id string) error

	// UpdateStockCounters writes the three sale-tracking columns in one
	// statement. Used by the fulfillment and return sequences only.
	UpdateStockCounters(ctx context.Context, table, id string, remaining, amountSold decimal.Decimal, soldInBills string) error
}
