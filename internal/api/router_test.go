package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-tracker/internal/api/handlers"
	"expense-tracker/internal/dto"
	"expense-tracker/internal/repository/memory"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	jwtManager := auth.NewJWTManager("router-test-secret-0123456789", "expense-tracker", "web", time.Hour)

	workspaceService := service.NewWorkspaceService(store.Workspaces(), store.Invites(), logger)
	categoryService := service.NewCategoryService(store.Categories(), logger)

	return SetupRouter(Handlers{
		Auth:        handlers.NewAuthHandler(service.NewAuthService(store.Users(), jwtManager, logger), logger),
		Workspace:   handlers.NewWorkspaceHandler(workspaceService, logger),
		Category:    handlers.NewCategoryHandler(categoryService, logger),
		Transaction: handlers.NewTransactionHandler(service.NewTransactionService(store.Transactions(), store.Categories(), logger), logger),
		Report:      handlers.NewReportHandler(service.NewReportService(store.Reports(), service.NewChartRenderer(), logger), logger),
		AI:          handlers.NewAIHandler(service.NewAITransactionService(service.DisabledExtractor{}, categoryService, store.Transactions(), logger), logger),
	}, jwtManager, workspaceService, Options{
		Server: config.ServerConfig{BodyLimit: 1 << 20, AllowedOrigins: "*"},
	}, logger)
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any, headers ...string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/Authentication/register", "", dto.RegisterRequest{
		Email:    email,
		FullName: "Test User",
		Password: "Passw0rd!",
	})
	if status != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, status, body)
	}
	return decode[dto.TokenResponse](t, body).Token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := decode[map[string]string](t, body)["status"]; got != "ok" {
		t.Errorf("status field = %q, want ok", got)
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "Ann@Example.com")

	status, _ := call(t, app, http.MethodPost, "/api/Authentication/register", "", dto.RegisterRequest{
		Email: "ann@example.com", FullName: "Ann", Password: "Passw0rd!",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}

	status, _ = call(t, app, http.MethodPost, "/api/Authentication/login", "", dto.LoginRequest{
		Email: "ann@example.com", Password: "wrong!!",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", status)
	}

	status, body := call(t, app, http.MethodPost, "/api/Authentication/login", "", dto.LoginRequest{
		Email: "ann@example.com", Password: "Passw0rd!",
	})
	if status != http.StatusOK || decode[dto.TokenResponse](t, body).Token == "" {
		t.Fatalf("login status = %d body %s", status, body)
	}

	status, body = call(t, app, http.MethodGet, "/api/Authentication/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	me := decode[dto.MeResponse](t, body)
	if me.Email != "ann@example.com" || me.UserID == "" {
		t.Errorf("me = %+v", me)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/Authentication/me",
		"/api/categories",
		"/api/transactions",
		"/api/reports/recent",
		"/api/workspaces/me",
	} {
		status, _ := call(t, app, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, status)
		}
	}

	status, _ := call(t, app, http.MethodGet, "/api/categories", "garbage", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("GET with bad token = %d, want 401", status)
	}
}

func TestMeRejectsTokenForMissingAccount(t *testing.T) {
	app := newTestApp(t)

	jwtManager := auth.NewJWTManager("router-test-secret-0123456789", "expense-tracker", "web", time.Hour)
	token, err := jwtManager.GenerateToken(uuid.NewString(), "gone@example.com", "Gone")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	status, body := call(t, app, http.MethodGet, "/api/Authentication/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("me for deleted account = %d (%s), want 401", status, body)
	}
}

func TestInviteAcceptFlow(t *testing.T) {
	app := newTestApp(t)
	owner := registerUser(t, app, "a@x.com")

	status, body := call(t, app, http.MethodPost, "/api/workspaces", owner, dto.CreateWorkspaceRequest{Name: "Family"})
	if status != http.StatusOK {
		t.Fatalf("create workspace status = %d body %s", status, body)
	}
	family := decode[dto.WorkspaceResponse](t, body)
	if !family.IsOwner || family.Name != "Family" {
		t.Fatalf("created workspace = %+v", family)
	}

	status, body = call(t, app, http.MethodPost, "/api/workspaces/"+family.WorkspaceID+"/invite", owner, dto.InviteRequest{Email: "b@x.com"})
	if status != http.StatusOK {
		t.Fatalf("invite status = %d body %s", status, body)
	}
	invite := decode[dto.InviteCreatedResponse](t, body)
	if invite.Token == "" || !invite.ExpiresAt.After(time.Now()) {
		t.Fatalf("invite = %+v", invite)
	}

	status, _ = call(t, app, http.MethodPost, "/api/workspaces/"+family.WorkspaceID+"/invite", owner, dto.InviteRequest{Email: "B@x.com"})
	if status != http.StatusConflict {
		t.Errorf("second invite status = %d, want 409", status)
	}

	member := registerUser(t, app, "b@x.com")

	status, body = call(t, app, http.MethodGet, "/api/workspaces/invites", member, nil)
	if status != http.StatusOK {
		t.Fatalf("invites status = %d", status)
	}
	pending := decode[[]dto.PendingInviteResponse](t, body)
	if len(pending) != 1 || pending[0].Token != invite.Token || pending[0].WorkspaceName != "Family" {
		t.Fatalf("pending = %+v", pending)
	}

	outsider := registerUser(t, app, "c@x.com")
	status, _ = call(t, app, http.MethodPost, "/api/workspaces/accept", outsider, dto.InviteTokenRequest{Token: invite.Token})
	if status != http.StatusForbidden {
		t.Errorf("accept by other email = %d, want 403", status)
	}

	status, body = call(t, app, http.MethodPost, "/api/workspaces/accept", member, dto.InviteTokenRequest{Token: invite.Token})
	if status != http.StatusOK {
		t.Fatalf("accept status = %d body %s", status, body)
	}

	status, _ = call(t, app, http.MethodPost, "/api/workspaces/accept", member, dto.InviteTokenRequest{Token: invite.Token})
	if status != http.StatusBadRequest {
		t.Errorf("second accept = %d, want 400", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/workspaces/me", member, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	found := false
	for _, ws := range decode[[]dto.WorkspaceResponse](t, body) {
		if ws.WorkspaceID == family.WorkspaceID {
			found = true
			if ws.IsOwner {
				t.Error("member listed as owner of Family")
			}
		}
	}
	if !found {
		t.Error("Family missing from member's workspaces")
	}

	status, _ = call(t, app, http.MethodPost, "/api/workspaces/"+family.WorkspaceID+"/invite", member, dto.InviteRequest{Email: "d@x.com"})
	if status != http.StatusForbidden {
		t.Errorf("invite by non-owner = %d, want 403", status)
	}
}

func TestSharedWorkspaceData(t *testing.T) {
	app := newTestApp(t)
	owner := registerUser(t, app, "a@x.com")

	_, body := call(t, app, http.MethodPost, "/api/workspaces", owner, dto.CreateWorkspaceRequest{Name: "Family"})
	family := decode[dto.WorkspaceResponse](t, body)
	_, body = call(t, app, http.MethodPost, "/api/workspaces/"+family.WorkspaceID+"/invite", owner, dto.InviteRequest{Email: "b@x.com"})
	invite := decode[dto.InviteCreatedResponse](t, body)

	member := registerUser(t, app, "b@x.com")
	call(t, app, http.MethodPost, "/api/workspaces/accept", member, dto.InviteTokenRequest{Token: invite.Token})

	status, _ := call(t, app, http.MethodPost, "/api/categories", owner, dto.CategoryRequest{Name: "Groceries"},
		"X-Workspace-Id", family.WorkspaceID)
	if status != http.StatusCreated {
		t.Fatalf("create category status = %d", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/categories", member, nil, "X-Workspace-Id", family.WorkspaceID)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if got := decode[[]dto.CategoryResponse](t, body); len(got) != 1 || got[0].Name != "Groceries" {
		t.Errorf("member sees %+v in Family", got)
	}

	// Without the header the member lands in their own Personal workspace.
	_, body = call(t, app, http.MethodGet, "/api/categories", member, nil)
	if got := decode[[]dto.CategoryResponse](t, body); len(got) != 0 {
		t.Errorf("personal categories = %+v, want none", got)
	}
}

func TestTransactionsAndReports(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "a@x.com")

	status, body := call(t, app, http.MethodPost, "/api/categories", token, dto.CategoryRequest{Name: "Food"})
	if status != http.StatusCreated {
		t.Fatalf("create category status = %d body %s", status, body)
	}
	food := decode[dto.CategoryResponse](t, body)

	status, body = call(t, app, http.MethodPost, "/api/transactions", token, dto.TransactionRequest{
		Amount: decimal.NewFromInt(100), Date: "2024-03-10", Type: 1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create income status = %d body %s", status, body)
	}
	status, body = call(t, app, http.MethodPost, "/api/transactions", token, dto.TransactionRequest{
		Amount: decimal.NewFromInt(40), Date: "2024-03-12", Type: 0, CategoryID: &food.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create expense status = %d body %s", status, body)
	}
	expense := decode[dto.TransactionResponse](t, body)

	status, _ = call(t, app, http.MethodPost, "/api/transactions", token, dto.TransactionRequest{
		Amount: decimal.Zero, Date: "2024-03-12", Type: 0,
	})
	if status != http.StatusBadRequest {
		t.Errorf("zero amount status = %d, want 400", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/reports/summary?year=2024&month=3", token, nil)
	if status != http.StatusOK {
		t.Fatalf("summary status = %d body %s", status, body)
	}
	if got, want := string(body), `{"income":100,"expense":40,"balance":60}`; got != want {
		t.Errorf("summary body = %s, want %s", got, want)
	}
	sum := decode[dto.SummaryResponse](t, body)
	if !sum.Income.Equal(decimal.NewFromInt(100)) || !sum.Expense.Equal(decimal.NewFromInt(40)) || !sum.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("summary = %+v, want 100/40/60", sum)
	}

	status, _ = call(t, app, http.MethodGet, "/api/reports/summary?year=2024&month=13", token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("month 13 status = %d, want 400", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/reports/by-category?year=2024&month=3&type=0", token, nil)
	if status != http.StatusOK {
		t.Fatalf("by-category status = %d", status)
	}
	rows := decode[[]dto.CategoryTotalResponse](t, body)
	if len(rows) != 1 || rows[0].CategoryName != "Food" || !rows[0].Total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("by-category = %+v", rows)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/by-category/chart?year=2024&month=3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("chart status = %d content-type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	resp.Body.Close()

	status, _ = call(t, app, http.MethodGet, "/api/reports/by-category/chart?year=2023&month=3", token, nil)
	if status != http.StatusNoContent {
		t.Errorf("empty chart status = %d, want 204", status)
	}

	status, body = call(t, app, http.MethodGet, "/api/transactions/search?categoryName=fo", token, nil)
	if status != http.StatusOK {
		t.Fatalf("search status = %d", status)
	}
	if got := decode[[]dto.TransactionResponse](t, body); len(got) != 1 || got[0].ID != expense.ID {
		t.Errorf("search = %+v", got)
	}

	status, body = call(t, app, http.MethodGet, "/api/reports/recent", token, nil)
	if status != http.StatusOK {
		t.Fatalf("recent status = %d", status)
	}
	if got := decode[[]dto.TransactionResponse](t, body); len(got) != 2 {
		t.Errorf("recent = %d items, want 2", len(got))
	}

	status, body = call(t, app, http.MethodGet, "/api/transactions?take=0", token, nil)
	if status != http.StatusOK {
		t.Fatalf("take=0 status = %d", status)
	}
	if got := decode[[]dto.TransactionResponse](t, body); len(got) != 1 {
		t.Errorf("take=0 = %d items, want 1", len(got))
	}

	status, _ = call(t, app, http.MethodGet, "/api/transactions?take=ten", token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("take=ten status = %d, want 400", status)
	}

	status, _ = call(t, app, http.MethodDelete, "/api/categories/"+food.ID, token, nil)
	if status != http.StatusConflict {
		t.Errorf("delete used category = %d, want 409", status)
	}

	status, _ = call(t, app, http.MethodDelete, "/api/transactions/"+expense.ID, token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete transaction = %d", status)
	}
	status, _ = call(t, app, http.MethodGet, "/api/transactions/"+expense.ID, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("get deleted transaction = %d, want 404", status)
	}
	status, _ = call(t, app, http.MethodDelete, "/api/categories/"+food.ID, token, nil)
	if status != http.StatusNoContent {
		t.Errorf("delete unused category = %d, want 204", status)
	}
}

func TestAIEndpointsWithoutProvider(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "a@x.com")

	status, _ := call(t, app, http.MethodPost, "/api/ai/transactions/from-text", token, dto.AITextRequest{Text: "coffee 3.50"})
	if status != http.StatusServiceUnavailable {
		t.Errorf("from-text status = %d, want 503", status)
	}

	status, body := call(t, app, http.MethodPost, "/api/ai/transactions/from-receipt", token, dto.AITextRequest{Text: "x"})
	if status != http.StatusBadRequest {
		t.Errorf("from-receipt without file = %d, want 400", status)
	}
	if got := decode[map[string]string](t, body)["error"]; got != "Missing file." {
		t.Errorf("error = %q", got)
	}
}
