package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType int

const (
	CategoryTypeExpense CategoryType = 0
	CategoryTypeIncome  CategoryType = 1
	CategoryTypeBoth    CategoryType = 2
)

func (t CategoryType) Valid() bool {
	return t >= CategoryTypeExpense && t <= CategoryTypeBoth
}

type Category struct {
	ID              uuid.UUID    `db:"id"`
	WorkspaceID     uuid.UUID    `db:"workspace_id"`
	CreatedByUserID uuid.UUID    `db:"created_by_user_id"`
	UserID          uuid.UUID    `db:"user_id"`
	Name            string       `db:"name"`
	Type            CategoryType `db:"type"`
	Color           *string      `db:"color"`
	CreatedAt       time.Time    `db:"created_at"`
}
