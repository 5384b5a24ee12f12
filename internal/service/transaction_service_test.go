package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense-tracker/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@x.com")
	bob := env.register(t, "bob@x.com")
	ws := env.personal(t, alice)
	bobWS := env.personal(t, bob)

	foreign, _ := env.categories.Create(ctx, bob, bobWS, &dto.CategoryRequest{Name: "Food"})

	cases := []struct {
		name string
		req  dto.TransactionRequest
	}{
		{"zero amount", dto.TransactionRequest{Amount: decimal.Zero}},
		{"negative amount", dto.TransactionRequest{Amount: decimal.NewFromInt(-5)}},
		{"rounds to zero", dto.TransactionRequest{Amount: decimal.RequireFromString("0.001")}},
		{"bad type", dto.TransactionRequest{Amount: decimal.NewFromInt(5), Type: 2}},
		{"bad date", dto.TransactionRequest{Amount: decimal.NewFromInt(5), Date: "03/01/2025"}},
		{"bad category id", dto.TransactionRequest{Amount: decimal.NewFromInt(5), CategoryID: strPtr("nope")}},
		{"foreign category", dto.TransactionRequest{Amount: decimal.NewFromInt(5), CategoryID: &foreign.ID}},
		{"unknown category", dto.TransactionRequest{Amount: decimal.NewFromInt(5), CategoryID: strPtr(uuid.NewString())}},
	}
	for _, tc := range cases {
		if _, err := env.transactions.Create(ctx, alice, ws, &tc.req); !isValidation(err) {
			t.Errorf("%s: error = %v, want validation error", tc.name, err)
		}
	}
}

func TestTransactionCreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)
	food, _ := env.categories.Create(ctx, user, ws, &dto.CategoryRequest{Name: "Food", Color: strPtr("#ff0000")})

	created, err := env.transactions.Create(ctx, user, ws, &dto.TransactionRequest{
		Amount:     decimal.RequireFromString("12.50"),
		Date:       "2025-03-14T18:30:00Z",
		Type:       0,
		Note:       strPtr("  lunch "),
		CategoryID: &food.ID,
	})
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if created.Date != "2025-03-14" {
		t.Errorf("date = %s, want 2025-03-14", created.Date)
	}
	if created.Note == nil || *created.Note != "lunch" {
		t.Errorf("note = %v, want lunch", created.Note)
	}
	if created.CategoryName == nil || *created.CategoryName != "Food" || created.CategoryColor == nil || *created.CategoryColor != "#ff0000" {
		t.Errorf("category join = %v %v", created.CategoryName, created.CategoryColor)
	}
	if !created.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s, want 12.5", created.Amount)
	}

	id := uuid.MustParse(created.ID)
	updated, err := env.transactions.Update(ctx, ws, id, &dto.TransactionRequest{
		Amount: decimal.NewFromInt(20),
		Type:   1,
		Note:   strPtr(""),
	})
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if updated.Type != 1 || updated.Note != nil || updated.CategoryID != nil {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("missing date = %s, want today", updated.Date)
	}

	if err := env.transactions.Delete(ctx, ws, id); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if err := env.transactions.Delete(ctx, ws, id); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("second Delete error = %v, want ErrTransactionNotFound", err)
	}
	if _, err := env.transactions.Update(ctx, ws, id, &dto.TransactionRequest{Amount: decimal.NewFromInt(1)}); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("Update deleted error = %v, want ErrTransactionNotFound", err)
	}
}

func TestTransactionListAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)
	groceries, _ := env.categories.Create(ctx, user, ws, &dto.CategoryRequest{Name: "Groceries"})
	rent, _ := env.categories.Create(ctx, user, ws, &dto.CategoryRequest{Name: "Rent"})

	dates := []string{"2025-01-05", "2025-01-20", "2025-01-10"}
	for i, d := range dates {
		cat := &groceries.ID
		if i == 2 {
			cat = &rent.ID
		}
		if _, err := env.transactions.Create(ctx, user, ws, &dto.TransactionRequest{
			Amount: decimal.NewFromInt(int64(10 + i)), Date: d, CategoryID: cat,
		}); err != nil {
			t.Fatalf("Create error = %v", err)
		}
	}

	list, err := env.transactions.List(ctx, ws, nil)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(list) != 3 || list[0].Date != "2025-01-20" || list[2].Date != "2025-01-05" {
		t.Errorf("List order = %v, %v, %v", list[0].Date, list[1].Date, list[2].Date)
	}

	for _, take := range []int{-4, 0, 1} {
		limited, _ := env.transactions.List(ctx, ws, intPtr(take))
		if len(limited) != 1 {
			t.Errorf("List(take=%d) returned %d rows, want 1", take, len(limited))
		}
	}

	found, err := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{CategoryName: "GROC"})
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Search by category returned %d rows, want 2", len(found))
	}

	today := time.Now().UTC().Format("2006-01-02")
	inWindow, err := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{CreatedFrom: today, CreatedTo: today})
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(inWindow) != 3 {
		t.Errorf("Search createdTo=today returned %d rows, want 3 (whole day included)", len(inWindow))
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	none, _ := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{CreatedTo: yesterday})
	if len(none) != 0 {
		t.Errorf("Search createdTo=yesterday returned %d rows, want 0", len(none))
	}

	// an RFC3339 lower bound is an exact instant, not the start of its day
	later := time.Now().UTC().Add(time.Minute).Format(time.RFC3339)
	after, err := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{CreatedFrom: later})
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(after) != 0 {
		t.Errorf("Search createdFrom=%s returned %d rows, want 0", later, len(after))
	}

	zero, _ := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{Take: intPtr(0)})
	if len(zero) != 1 {
		t.Errorf("Search take=0 returned %d rows, want 1", len(zero))
	}

	if _, err := env.transactions.Search(ctx, ws, &dto.TransactionSearchQuery{CreatedFrom: "soon"}); !isValidation(err) {
		t.Errorf("bad createdFrom error = %v, want validation error", err)
	}
}
