package dto

import "github.com/shopspring/decimal"

// CartLine is one line of the cart as assembled in the UI. The snapshot
// quantity is what the user saw at cart-build time; the fulfillment sequence
// re-verifies against the live row before writing.
type CartLine struct {
	ItemID                  string          `json:"item_id"`
	ItemTable               string          `json:"item_table"`
	ItemName                string          `json:"item_name"`
	QuantityDozens          decimal.Decimal `json:"quantity_dozens"`
	SnapshotRemainingDozens decimal.Decimal `json:"snapshot_remaining_dozens"`
}

type CreateOrderInput struct {
	BillID    string     `json:"bill_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Comments  string     `json:"comments"`
	Lines     []CartLine `json:"lines"`
}
