package repository

import (
	"context"
	"time"

	"expense-tracker/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"t.id", "t.workspace_id", "t.user_id", "t.created_by_user_id", "t.amount", "t.date", "t.type", "t.note",
	"t.category_id", "t.created_at", "c.name", "c.color",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns("id", "workspace_id", "user_id", "created_by_user_id", "amount", "date", "type", "note", "category_id", "created_at").
		Values(tx.ID, tx.WorkspaceID, tx.UserID, tx.CreatedByUserID, tx.Amount, tx.Date, tx.Type, tx.Note, tx.CategoryID, tx.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	_, err := exec(ctx, r.db, query)
	return err
}

func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Update("transactions").
		Set("amount", tx.Amount).
		Set("date", tx.Date).
		Set("type", tx.Type).
		Set("note", tx.Note).
		Set("category_id", tx.CategoryID).
		Where(squirrel.Eq{"workspace_id": tx.WorkspaceID, "id": tx.ID}).
		PlaceholderFormat(squirrel.Dollar)

	affected, err := exec(ctx, r.db, query)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"workspace_id": workspaceID, "id": id}).
		PlaceholderFormat(squirrel.Dollar)

	affected, err := exec(ctx, r.db, query)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Transaction, error) {
	query := selectTransactions().Where(squirrel.Eq{"t.workspace_id": workspaceID, "t.id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*models.Transaction, error) {
	query := selectTransactions().
		Where(squirrel.Eq{"t.workspace_id": workspaceID}).
		OrderBy("t.date DESC", "t.created_at DESC").
		Limit(uint64(limit))

	return r.query(ctx, query)
}

func (r *TransactionRepository) Search(ctx context.Context, workspaceID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	query := selectTransactions().Where(squirrel.Eq{"t.workspace_id": workspaceID})

	if filter.CategoryName != "" {
		query = query.Where(squirrel.ILike{"c.name": "%" + escapeLike(filter.CategoryName) + "%"})
	}
	if filter.CreatedFrom != nil {
		query = query.Where(squirrel.GtOrEq{"t.created_at": *filter.CreatedFrom})
	}
	if filter.CreatedBefore != nil {
		query = query.Where(squirrel.Lt{"t.created_at": *filter.CreatedBefore})
	}

	query = query.OrderBy("t.created_at DESC").Limit(uint64(filter.Limit))
	return r.query(ctx, query)
}

// Recent returns transactions created at or after since, newest first.
func (r *TransactionRepository) Recent(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]*models.Transaction, error) {
	query := selectTransactions().
		Where(squirrel.Eq{"t.workspace_id": workspaceID}).
		Where(squirrel.GtOrEq{"t.created_at": since}).
		OrderBy("t.created_at DESC").
		Limit(uint64(limit))

	return r.query(ctx, query)
}

func (r *TransactionRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func selectTransactions() squirrel.SelectBuilder {
	return squirrel.Select(transactionColumns...).
		From("transactions t").
		LeftJoin("categories c ON c.id = t.category_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.WorkspaceID, &tx.UserID, &tx.CreatedByUserID, &tx.Amount, &tx.Date, &tx.Type, &tx.Note,
		&tx.CategoryID, &tx.CreatedAt, &tx.CategoryName, &tx.CategoryColor,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
