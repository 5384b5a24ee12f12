package dto

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
