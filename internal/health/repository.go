package health

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wholesaleops/stockledger/internal/model"
)

// LowStockItem is one article whose remaining quantity dropped below the
// monitor's threshold.
type LowStockItem struct {
	Table                   string          `db:"-" json:"table"`
	ID                      string          `db:"id" json:"id"`
	ItemName                string          `db:"item_name" json:"item_name"`
	ArticleNumber           string          `db:"article_number" json:"article_number"`
	QuantityRemainingDozens decimal.Decimal `db:"quantity_remaining_dozens" json:"quantity_remaining_dozens"`
}

type Repository interface {
	// ProbeOrders runs a cheap read against the orders table to confirm the
	// data store is reachable.
	ProbeOrders(ctx context.Context) error

	// ListLowStock scans every category table for articles below the
	// threshold.
	ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]LowStockItem, error)

	CountPendingFailedOps(ctx context.Context) (int, error)

	InsertSystemLog(ctx context.Context, log *model.SystemLog) error
}
