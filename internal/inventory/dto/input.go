package dto

import "github.com/shopspring/decimal"

type StockItemInput struct {
	ItemCategory            string          `json:"item_category"`
	ItemName                string          `json:"item_name"`
	ArticleNumber           string          `json:"article_number"`
	CartonNumber            string          `json:"carton_number"`
	QuantityRemainingDozens decimal.Decimal `json:"quantity_remaining_dozens"`
	Supplier                string          `json:"supplier"`
}
