package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"` // YYYY-MM-DD or RFC3339
	Type       int             `json:"type"`
	Note       *string         `json:"note"`
	CategoryID *string         `json:"categoryId"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Type          int             `json:"type"`
	Note          *string         `json:"note"`
	CategoryID    *string         `json:"categoryId"`
	CategoryName  *string         `json:"categoryName"`
	CategoryColor *string         `json:"categoryColor"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type TransactionSearchQuery struct {
	CategoryName string
	CreatedFrom  string
	CreatedTo    string
	Take         *int // nil when the query omits it
}
