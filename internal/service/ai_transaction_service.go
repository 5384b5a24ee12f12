package service

import (
	"context"
	"strings"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAICategory = "Other"

// AITransactionService stores what the extractor read as a real
// transaction in the caller's workspace.
type AITransactionService struct {
	extractor    Extractor
	categories   *CategoryService
	transactions TransactionStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewAITransactionService(extractor Extractor, categories *CategoryService, transactions TransactionStore, logger *zap.Logger) *AITransactionService {
	return &AITransactionService{
		extractor:    extractor,
		categories:   categories,
		transactions: transactions,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *AITransactionService) CreateFromText(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.AITextRequest) (*dto.AITransactionResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, invalid("text is required")
	}

	extracted, err := s.extractor.ExtractFromText(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, userID, workspaceID, extracted)
}

func (s *AITransactionService) CreateFromReceipt(ctx context.Context, userID, workspaceID uuid.UUID, data []byte, fileName, mimeType, note string) (*dto.AITransactionResponse, error) {
	if len(data) == 0 {
		return nil, invalid("Missing file.")
	}

	extracted, err := s.extractor.ExtractFromFile(ctx, data, fileName, mimeType, note)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, userID, workspaceID, extracted)
}

func (s *AITransactionService) store(ctx context.Context, userID, workspaceID uuid.UUID, extracted *AITransaction) (*dto.AITransactionResponse, error) {
	amount := extracted.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrMalformedExtraction
	}
	now := s.now()

	date := truncateDay(now)
	if d, err := time.Parse(dayLayout, strings.TrimSpace(extracted.Date)); err == nil {
		date = d
	}

	name := strings.TrimSpace(sanitizeUTF8(extracted.CategoryName))
	if name == "" {
		name = defaultAICategory
	}
	if r := []rune(name); len(r) > maxCategoryName {
		name = strings.TrimSpace(string(r[:maxCategoryName]))
	}

	txType := models.TransactionTypeExpense
	catType := models.CategoryTypeExpense
	if extracted.Type == "income" {
		txType = models.TransactionTypeIncome
		catType = models.CategoryTypeIncome
	}

	category, err := s.categories.findOrCreate(ctx, userID, workspaceID, name, catType)
	if err != nil {
		return nil, err
	}

	note := extracted.Note
	if strings.TrimSpace(note) == "" {
		note = extracted.Merchant
	}

	t := &models.Transaction{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		UserID:          userID,
		CreatedByUserID: userID,
		Amount:          amount,
		Date:            date,
		Type:            txType,
		Note:            trimmedOrNil(&note),
		CategoryID:      &category.ID,
		CreatedAt:       now,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created from AI extraction",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("transaction_id", t.ID.String()),
		zap.String("category", category.Name),
	)

	return &dto.AITransactionResponse{
		ID:         t.ID.String(),
		Amount:     t.Amount,
		Date:       t.Date.Format(dayLayout),
		Type:       int(t.Type),
		Category:   category.Name,
		Note:       t.Note,
		Confidence: extracted.Confidence,
	}, nil
}
