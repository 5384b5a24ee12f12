package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	add := func(amount int64, typ int, date string) {
		t.Helper()
		if _, err := env.transactions.Create(ctx, user, ws, &dto.TransactionRequest{
			Amount: decimal.NewFromInt(amount), Type: typ, Date: date,
		}); err != nil {
			t.Fatalf("Create error = %v", err)
		}
	}
	add(100, 1, "2025-03-01")
	add(40, 0, "2025-03-31")
	add(999, 0, "2025-04-01")
	add(5, 0, "2025-02-28")

	sum, err := env.reports.Summary(ctx, ws, 2025, 3)
	if err != nil {
		t.Fatalf("Summary error = %v", err)
	}
	if !sum.Income.Equal(decimal.NewFromInt(100)) || !sum.Expense.Equal(decimal.NewFromInt(40)) || !sum.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Summary = %+v, want 100/40/60", sum)
	}

	empty, err := env.reports.Summary(ctx, ws, 2024, 3)
	if err != nil {
		t.Fatalf("Summary error = %v", err)
	}
	if !empty.Balance.IsZero() {
		t.Errorf("empty month balance = %s", empty.Balance)
	}

	for _, tc := range []struct{ year, month int }{{2025, 0}, {2025, 13}, {0, 1}, {10000, 1}} {
		if _, err := env.reports.Summary(ctx, ws, tc.year, tc.month); !isValidation(err) {
			t.Errorf("Summary(%d, %d) error = %v, want validation error", tc.year, tc.month, err)
		}
	}
}

func TestByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)
	food, _ := env.categories.Create(ctx, user, ws, &dto.CategoryRequest{Name: "Food", Color: strPtr("#ff8800")})

	for _, req := range []dto.TransactionRequest{
		{Amount: decimal.NewFromInt(30), Date: "2025-03-02", CategoryID: &food.ID},
		{Amount: decimal.NewFromInt(15), Date: "2025-03-03", CategoryID: &food.ID},
		{Amount: decimal.NewFromInt(70), Date: "2025-03-04"},
		{Amount: decimal.NewFromInt(500), Date: "2025-03-05", Type: 1},
	} {
		req := req
		if _, err := env.transactions.Create(ctx, user, ws, &req); err != nil {
			t.Fatalf("Create error = %v", err)
		}
	}

	rows, err := env.reports.ByCategory(ctx, ws, 2025, 3, 0)
	if err != nil {
		t.Fatalf("ByCategory error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ByCategory returned %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].CategoryName != "Uncategorized" || rows[0].CategoryID != nil || !rows[0].Total.Equal(decimal.NewFromInt(70)) {
		t.Errorf("first row = %+v, want Uncategorized 70", rows[0])
	}
	if rows[1].CategoryName != "Food" || !rows[1].Total.Equal(decimal.NewFromInt(45)) {
		t.Errorf("second row = %+v, want Food 45", rows[1])
	}

	if _, err := env.reports.ByCategory(ctx, ws, 2025, 3, 2); !isValidation(err) {
		t.Errorf("type 2 error = %v, want validation error", err)
	}

	png, err := env.reports.ByCategoryChart(ctx, ws, 2025, 3, 0)
	if err != nil {
		t.Fatalf("ByCategoryChart error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("chart is not a PNG")
	}
	if _, err := env.reports.ByCategoryChart(ctx, ws, 2024, 3, 0); !errors.Is(err, ErrNoChartData) {
		t.Errorf("empty chart error = %v, want ErrNoChartData", err)
	}
}

func TestRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	now := time.Now().UTC()
	for i, age := range []time.Duration{time.Minute, 2 * time.Hour, 23 * time.Hour, 25 * time.Hour} {
		err := env.store.Transactions().Create(ctx, &models.Transaction{
			ID:              uuid.New(),
			WorkspaceID:     ws,
			UserID:          user,
			CreatedByUserID: user,
			Amount:          decimal.NewFromInt(int64(i + 1)),
			Date:            truncateDay(now),
			CreatedAt:       now.Add(-age),
		})
		if err != nil {
			t.Fatalf("seed error = %v", err)
		}
	}

	recent, err := env.reports.Recent(ctx, ws, nil)
	if err != nil {
		t.Fatalf("Recent error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent returned %d rows, want 3 inside 24h", len(recent))
	}
	if !recent[0].Amount.Equal(decimal.NewFromInt(1)) || !recent[2].Amount.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Recent not ordered newest first: %v %v %v", recent[0].Amount, recent[1].Amount, recent[2].Amount)
	}

	one, _ := env.reports.Recent(ctx, ws, intPtr(1))
	if len(one) != 1 {
		t.Errorf("Recent(1) returned %d rows", len(one))
	}
}

func TestParseHexColor(t *testing.T) {
	if _, ok := parseHexColor("#00ff7f"); !ok {
		t.Error("#00ff7f rejected")
	}
	for _, bad := range []string{"", "red", "#fff", "#gg0000"} {
		if _, ok := parseHexColor(bad); ok {
			t.Errorf("%q accepted", bad)
		}
	}
}
