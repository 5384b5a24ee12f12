package service

import (
	"context"
	"fmt"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRecentTake = 10
	maxRecentTake     = 50
	recentWindow      = 24 * time.Hour
)

type ReportService struct {
	reports ReportStore
	charts  *ChartRenderer
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportService(reports ReportStore, charts *ChartRenderer, logger *zap.Logger) *ReportService {
	return &ReportService{
		reports: reports,
		charts:  charts,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportService) Summary(ctx context.Context, workspaceID uuid.UUID, year, month int) (*dto.SummaryResponse, error) {
	from, to, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	sum, err := s.reports.MonthlySummary(ctx, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryResponse{
		Income:  sum.Income,
		Expense: sum.Expense,
		Balance: sum.Balance(),
	}, nil
}

func (s *ReportService) ByCategory(ctx context.Context, workspaceID uuid.UUID, year, month, typ int) ([]dto.CategoryTotalResponse, error) {
	rows, err := s.totals(ctx, workspaceID, year, month, typ)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CategoryTotalResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.CategoryTotalResponse{
			CategoryID:    uuidPtrString(r.CategoryID),
			CategoryName:  r.CategoryName,
			CategoryColor: r.CategoryColor,
			Total:         r.Total,
		})
	}
	return items, nil
}

// ByCategoryChart renders ByCategory as a PNG pie chart. It returns
// ErrNoChartData when the month has no matching transactions.
func (s *ReportService) ByCategoryChart(ctx context.Context, workspaceID uuid.UUID, year, month, typ int) ([]byte, error) {
	rows, err := s.totals(ctx, workspaceID, year, month, typ)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoChartData
	}

	title := "Expenses"
	if models.TransactionType(typ) == models.TransactionTypeIncome {
		title = "Income"
	}
	return s.charts.CategoryPie(fmt.Sprintf("%s, %s %d", title, time.Month(month), year), rows)
}

func (s *ReportService) Recent(ctx context.Context, workspaceID uuid.UUID, take *int) ([]dto.TransactionResponse, error) {
	since := s.now().Add(-recentWindow)
	items, err := s.reports.RecentTransactions(ctx, workspaceID, since, clampTake(take, maxRecentTake, defaultRecentTake))
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(items), nil
}

func (s *ReportService) totals(ctx context.Context, workspaceID uuid.UUID, year, month, typ int) ([]models.CategoryTotal, error) {
	from, to, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}
	txType := models.TransactionType(typ)
	if !txType.Valid() {
		return nil, invalid("type must be 0 (expense) or 1 (income)")
	}
	return s.reports.TotalsByCategory(ctx, workspaceID, from, to, txType)
}

// monthRange returns the half-open [first day, first day of next month) range.
func monthRange(year, month int) (time.Time, time.Time, error) {
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, invalid("year must be between 1 and 9999")
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, invalid("month must be between 1 and 12")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}
