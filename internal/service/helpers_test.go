package service

import (
	"context"
	"testing"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/repository/memory"
	"expense-tracker/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type testEnv struct {
	store        *memory.Store
	auth         *AuthService
	workspaces   *WorkspaceService
	categories   *CategoryService
	transactions *TransactionService
	reports      *ReportService
	jwt          *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	jwt := auth.NewJWTManager("test-secret-0123456789", "expense-tracker", "expense-tracker", time.Hour)

	return &testEnv{
		store:        store,
		jwt:          jwt,
		auth:         NewAuthService(store.Users(), jwt, log),
		workspaces:   NewWorkspaceService(store.Workspaces(), store.Invites(), log),
		categories:   NewCategoryService(store.Categories(), log),
		transactions: NewTransactionService(store.Transactions(), store.Categories(), log),
		reports:      NewReportService(store.Reports(), NewChartRenderer(), log),
	}
}

// register creates an account and returns its id.
func (e *testEnv) register(t *testing.T, email string) uuid.UUID {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		FullName: "Test User",
		Password: "Secret!1",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	claims, err := e.jwt.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken error = %v", err)
	}
	return uuid.MustParse(claims.UserID)
}

func (e *testEnv) personal(t *testing.T, userID uuid.UUID) uuid.UUID {
	t.Helper()
	id, err := e.workspaces.GetOrCreatePersonalWorkspace(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetOrCreatePersonalWorkspace error = %v", err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }
