package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MonthlySummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (s MonthlySummary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

type CategoryTotal struct {
	CategoryID    *uuid.UUID
	CategoryName  string
	CategoryColor *string
	Total         decimal.Decimal
}
