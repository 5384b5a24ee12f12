package repository

import (
	"context"
	"time"

	"expense-tracker/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReportRepository struct {
	db     *pgxpool.Pool
	txRepo *TransactionRepository
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		txRepo: NewTransactionRepository(db, logger),
		logger: logger,
	}
}

// MonthlySummary sums income and expense amounts for dates in [from, to).
func (r *ReportRepository) MonthlySummary(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) (models.MonthlySummary, error) {
	query := squirrel.Select(
		"COALESCE(SUM(amount) FILTER (WHERE type = 1), 0)",
		"COALESCE(SUM(amount) FILTER (WHERE type = 0), 0)",
	).
		From("transactions").
		Where(squirrel.Eq{"workspace_id": workspaceID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return models.MonthlySummary{}, err
	}

	var summary models.MonthlySummary
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&summary.Income, &summary.Expense); err != nil {
		return models.MonthlySummary{}, mapError(err)
	}
	return summary, nil
}

// TotalsByCategory groups amounts of one type in [from, to) by category, largest first.
func (r *ReportRepository) TotalsByCategory(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, txType models.TransactionType) ([]models.CategoryTotal, error) {
	query := squirrel.Select("t.category_id", "COALESCE(c.name, 'Uncategorized')", "c.color", "SUM(t.amount) AS total").
		From("transactions t").
		LeftJoin("categories c ON c.id = t.category_id").
		Where(squirrel.Eq{"t.workspace_id": workspaceID, "t.type": txType}).
		Where(squirrel.GtOrEq{"t.date": from}).
		Where(squirrel.Lt{"t.date": to}).
		GroupBy("t.category_id", "c.name", "c.color").
		OrderBy("total DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	totals := make([]models.CategoryTotal, 0)
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &ct.CategoryColor, &ct.Total); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func (r *ReportRepository) RecentTransactions(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]*models.Transaction, error) {
	return r.txRepo.Recent(ctx, workspaceID, since, limit)
}
