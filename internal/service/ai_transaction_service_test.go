package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stubExtractor struct {
	tx  *AITransaction
	err error

	gotMime, gotNote string
}

func (s *stubExtractor) ExtractFromText(context.Context, string) (*AITransaction, error) {
	return s.tx, s.err
}

func (s *stubExtractor) ExtractFromFile(_ context.Context, _ []byte, _, mimeType, note string) (*AITransaction, error) {
	s.gotMime, s.gotNote = mimeType, note
	return s.tx, s.err
}

func newAIService(env *testEnv, ex Extractor) *AITransactionService {
	return NewAITransactionService(ex, env.categories, env.store.Transactions(), zap.NewNop())
}

func TestCreateFromTextCreatesCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	ex := &stubExtractor{tx: &AITransaction{
		Amount:       decimal.RequireFromString("2500"),
		Type:         "income",
		Date:         "2025-03-01",
		CategoryName: "  Salary ",
		Merchant:     "ACME Corp",
		Confidence:   0.8,
	}}
	svc := newAIService(env, ex)

	resp, err := svc.CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "March salary 2500"})
	if err != nil {
		t.Fatalf("CreateFromText error = %v", err)
	}
	if resp.Category != "Salary" || resp.Type != 1 || resp.Date != "2025-03-01" || resp.Confidence != 0.8 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Note == nil || *resp.Note != "ACME Corp" {
		t.Errorf("note = %v, want merchant fallback", resp.Note)
	}

	cats, _ := env.categories.List(ctx, ws)
	if len(cats) != 1 || cats[0].Name != "Salary" || cats[0].Type != int(models.CategoryTypeIncome) {
		t.Fatalf("categories = %+v, want one income Salary", cats)
	}

	// same category name reuses the row
	if _, err := svc.CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "again"}); err != nil {
		t.Fatalf("second CreateFromText error = %v", err)
	}
	cats, _ = env.categories.List(ctx, ws)
	if len(cats) != 1 {
		t.Errorf("categories = %d, want 1", len(cats))
	}

	txs, _ := env.transactions.List(ctx, ws, nil)
	if len(txs) != 2 || txs[0].CategoryName == nil || *txs[0].CategoryName != "Salary" {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestCreateFromTextDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	svc := newAIService(env, &stubExtractor{tx: &AITransaction{
		Amount:     decimal.RequireFromString("3.20"),
		Type:       "expense",
		Date:       "yesterday",
		Note:       "coffee",
		Merchant:   "Cafe",
		Confidence: 0.4,
	}})

	resp, err := svc.CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "coffee 3.20"})
	if err != nil {
		t.Fatalf("CreateFromText error = %v", err)
	}
	if resp.Category != "Other" || resp.Type != 0 {
		t.Errorf("response = %+v, want Other expense", resp)
	}
	if resp.Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("date = %s, want today", resp.Date)
	}
	if resp.Note == nil || *resp.Note != "coffee" {
		t.Errorf("note = %v, want coffee", resp.Note)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("id %q is not a uuid", resp.ID)
	}
}

func TestCreateFromTextErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	if _, err := newAIService(env, &stubExtractor{}).CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "  "}); !isValidation(err) {
		t.Errorf("empty text error = %v, want validation error", err)
	}

	upstream := &UpstreamError{Status: 500, Body: "boom"}
	_, err := newAIService(env, &stubExtractor{err: upstream}).CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "x"})
	if !errors.Is(err, upstream) {
		t.Errorf("error = %v, want the upstream error", err)
	}

	_, err = newAIService(env, DisabledExtractor{}).CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "x"})
	if !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("error = %v, want ErrAIUnavailable", err)
	}

	txs, _ := env.transactions.List(ctx, ws, nil)
	if len(txs) != 0 {
		t.Errorf("failed extractions stored %d transactions", len(txs))
	}
}

func TestCreateFromReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	ex := &stubExtractor{tx: &AITransaction{
		Amount: decimal.NewFromInt(18), Type: "expense", Date: "2025-02-10", CategoryName: "Groceries", Confidence: 1,
	}}
	svc := newAIService(env, ex)

	if _, err := svc.CreateFromReceipt(ctx, user, ws, nil, "r.jpg", "image/jpeg", ""); !isValidation(err) {
		t.Errorf("empty file error = %v, want validation error", err)
	}

	resp, err := svc.CreateFromReceipt(ctx, user, ws, []byte("img"), "r.jpg", "image/jpeg", "weekly shop")
	if err != nil {
		t.Fatalf("CreateFromReceipt error = %v", err)
	}
	if resp.Category != "Groceries" || resp.Note != nil {
		t.Errorf("response = %+v", resp)
	}
	if ex.gotMime != "image/jpeg" || ex.gotNote != "weekly shop" {
		t.Errorf("extractor got mime=%q note=%q", ex.gotMime, ex.gotNote)
	}
}

func TestCreateFromTextRejectsRoundedZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	ws := env.personal(t, user)

	svc := newAIService(env, &stubExtractor{tx: &AITransaction{
		Amount: decimal.RequireFromString("0.004"), Type: "expense", CategoryName: "Phantom",
	}})

	_, err := svc.CreateFromText(ctx, user, ws, &dto.AITextRequest{Text: "almost nothing"})
	if !errors.Is(err, ErrMalformedExtraction) {
		t.Fatalf("error = %v, want ErrMalformedExtraction", err)
	}
	if cats, _ := env.categories.List(ctx, ws); len(cats) != 0 {
		t.Errorf("categories = %+v, want none left behind", cats)
	}
}
