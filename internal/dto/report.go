package dto

import "github.com/shopspring/decimal"

type SummaryResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type CategoryTotalResponse struct {
	CategoryID    *string         `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	CategoryColor *string         `json:"categoryColor"`
	Total         decimal.Decimal `json:"total"`
}
