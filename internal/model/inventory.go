package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSupplier is recorded when a stock row is created without a supplier.
const DefaultSupplier = "Unknown Supplier"

// StockTables lists the category-partitioned inventory tables. Every table
// name arriving from a request or an order line must be one of these.
var StockTables = []string{"short_and_trousers", "shirts", "jeans_and_joggers"}

func IsStockTable(name string) bool {
	for _, t := range StockTables {
		if t == name {
			return true
		}
	}
	return false
}

// StockItem is one stocked article in one of the category tables.
// Quantities are in dozens.
type StockItem struct {
	ID                      string          `db:"id" json:"id"`
	ItemCategory            string          `db:"item_category" json:"item_category"`
	ItemName                string          `db:"item_name" json:"item_name"`
	ArticleNumber           string          `db:"article_number" json:"article_number"`
	CartonNumber            string          `db:"carton_number" json:"carton_number"`
	QuantityRemainingDozens decimal.Decimal `db:"quantity_remaining_dozens" json:"quantity_remaining_dozens"`
	AmountSoldDozens        decimal.Decimal `db:"amount_sold_dozens" json:"amount_sold_dozens"`
	SoldInBills             string          `db:"sold_in_bills" json:"sold_in_bills"`
	Supplier                string          `db:"supplier" json:"supplier"`
	ItemComment             *string         `db:"item_comment" json:"item_comment"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
}

// billSeparator joins bill ids in the sold_in_bills column. The first entry
// carries no separator.
const billSeparator = "-"

func splitBills(list string) []string {
	if list == "" {
		return nil
	}
	return strings.Split(list, billSeparator)
}

// AppendBill returns list with billID appended, unless it is already present.
func AppendBill(list, billID string) string {
	if ContainsBill(list, billID) {
		return list
	}
	if list == "" {
		return billID
	}
	return list + billSeparator + billID
}

// RemoveBill returns list without billID.
func RemoveBill(list, billID string) string {
	bills := splitBills(list)
	kept := bills[:0]
	for _, b := range bills {
		if b != billID {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, billSeparator)
}

func ContainsBill(list, billID string) bool {
	for _, b := range splitBills(list) {
		if b == billID {
			return true
		}
	}
	return false
}
