package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType int

const (
	TransactionTypeExpense TransactionType = 0
	TransactionTypeIncome  TransactionType = 1
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	WorkspaceID     uuid.UUID       `db:"workspace_id"`
	UserID          uuid.UUID       `db:"user_id"`
	CreatedByUserID uuid.UUID       `db:"created_by_user_id"`
	Amount          decimal.Decimal `db:"amount"`
	Date            time.Time       `db:"date"`
	Type            TransactionType `db:"type"`
	Note            *string         `db:"note"`
	CategoryID      *uuid.UUID      `db:"category_id"`
	CreatedAt       time.Time       `db:"created_at"`

	// filled from the joined category on reads
	CategoryName  *string `db:"-"`
	CategoryColor *string `db:"-"`
}

// TransactionFilter narrows a transaction search inside one workspace.
type TransactionFilter struct {
	CategoryName  string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	Limit         int
}
