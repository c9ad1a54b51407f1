package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusActive    = "active"
	OrderStatusCancelled = "cancelled"
)

// Order is one bill. Created once by the fulfillment sequence, mutated only
// by the return sequence, never deleted.
type Order struct {
	BillID              string          `db:"bill_id" json:"bill_id"`
	CustomerFirstName   string          `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName    string          `db:"customer_last_name" json:"customer_last_name"`
	CustomerPhone       string          `db:"customer_phone" json:"customer_phone"`
	Comments            string          `db:"comments" json:"comments"`
	TotalItems          int             `db:"total_items" json:"total_items"`
	TotalQuantityDozens decimal.Decimal `db:"total_quantity_dozens" json:"total_quantity_dozens"`
	Status              string          `db:"status" json:"status"`
	OrderDate           time.Time       `db:"order_date" json:"order_date"`
	ReturnDate          *time.Time      `db:"return_date" json:"return_date,omitempty"`
}

// OrderItem is one line of a bill, with a snapshot of the article at time of
// sale. Read-only after creation; the return sequence uses it to know what to
// restore.
type OrderItem struct {
	ID             string          `db:"id" json:"id"`
	BillID         string          `db:"bill_id" json:"bill_id"`
	ItemID         string          `db:"item_id" json:"item_id"`
	ItemTable      string          `db:"item_table" json:"item_table"`
	QuantityDozens decimal.Decimal `db:"quantity_dozens" json:"quantity_dozens"`
	ItemCategory   string          `db:"item_category" json:"item_category"`
	ItemName       string          `db:"item_name" json:"item_name"`
	ArticleNumber  string          `db:"article_number" json:"article_number"`
}
