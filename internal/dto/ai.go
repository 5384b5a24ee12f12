package dto

import "github.com/shopspring/decimal"

type AITextRequest struct {
	Text string `json:"text"`
}

type AITransactionResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Type       int             `json:"type"`
	Category   string          `json:"category"`
	Note       *string         `json:"note"`
	Confidence float64         `json:"confidence"`
}
