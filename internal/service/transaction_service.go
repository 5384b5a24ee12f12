package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListTake   = 50
	maxListTake       = 200
	defaultSearchTake = 200
	maxSearchTake     = 500
)

type TransactionService struct {
	transactions TransactionStore
	categories   CategoryStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewTransactionService(transactions TransactionStore, categories CategoryStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionService) List(ctx context.Context, workspaceID uuid.UUID, take *int) ([]dto.TransactionResponse, error) {
	items, err := s.transactions.List(ctx, workspaceID, clampTake(take, maxListTake, defaultListTake))
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(items), nil
}

// Search filters by category name substring and creation window. CreatedFrom
// is an inclusive instant; CreatedTo is a day and includes all of it.
func (s *TransactionService) Search(ctx context.Context, workspaceID uuid.UUID, q *dto.TransactionSearchQuery) ([]dto.TransactionResponse, error) {
	filter := models.TransactionFilter{
		CategoryName: strings.TrimSpace(q.CategoryName),
		Limit:        clampTake(q.Take, maxSearchTake, defaultSearchTake),
	}
	if q.CreatedFrom != "" {
		from, ok := parseInstant(q.CreatedFrom)
		if !ok {
			return nil, invalid("createdFrom must be a date (YYYY-MM-DD) or RFC3339 time")
		}
		filter.CreatedFrom = &from
	}
	if q.CreatedTo != "" {
		to, ok := parseDay(q.CreatedTo)
		if !ok {
			return nil, invalid("createdTo must be a date (YYYY-MM-DD)")
		}
		before := to.AddDate(0, 0, 1)
		filter.CreatedBefore = &before
	}

	items, err := s.transactions.Search(ctx, workspaceID, filter)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(items), nil
}

func (s *TransactionService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.transactions.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	resp := toTransactionResponse(t)
	return &resp, nil
}

func (s *TransactionService) Create(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error) {
	t := &models.Transaction{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		UserID:          userID,
		CreatedByUserID: userID,
		CreatedAt:       s.now(),
	}
	if err := s.apply(ctx, t, req); err != nil {
		return nil, err
	}

	if err := s.transactions.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, invalid("Invalid category")
		}
		return nil, err
	}
	return s.Get(ctx, workspaceID, t.ID)
}

func (s *TransactionService) Update(ctx context.Context, workspaceID, id uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error) {
	t, err := s.transactions.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if err := s.apply(ctx, t, req); err != nil {
		return nil, err
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrTransactionNotFound
		case errors.Is(err, repository.ErrReferenced):
			return nil, invalid("Invalid category")
		}
		return nil, err
	}
	return s.Get(ctx, workspaceID, id)
}

func (s *TransactionService) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if err := s.transactions.Delete(ctx, workspaceID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	return nil
}

// apply validates req and copies it onto t.
func (s *TransactionService) apply(ctx context.Context, t *models.Transaction, req *dto.TransactionRequest) error {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	typ := models.TransactionType(req.Type)
	if !typ.Valid() {
		return invalid("type must be 0 (expense) or 1 (income)")
	}

	date := truncateDay(s.now())
	if strings.TrimSpace(req.Date) != "" {
		d, ok := parseDay(req.Date)
		if !ok {
			return invalid("date must be YYYY-MM-DD")
		}
		date = d
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return invalid("Invalid category")
		}
		if _, err := s.categories.GetByID(ctx, t.WorkspaceID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("Invalid category")
			}
			return err
		}
		categoryID = &id
	}

	t.Amount = amount
	t.Type = typ
	t.Date = date
	t.Note = trimmedOrNil(req.Note)
	t.CategoryID = categoryID
	return nil
}

func toTransactionResponses(items []*models.Transaction) []dto.TransactionResponse {
	resp := make([]dto.TransactionResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toTransactionResponse(t))
	}
	return resp
}

func toTransactionResponse(t *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            t.ID.String(),
		UserID:        t.UserID.String(),
		Amount:        t.Amount,
		Date:          t.Date.Format(dayLayout),
		Type:          int(t.Type),
		Note:          t.Note,
		CategoryID:    uuidPtrString(t.CategoryID),
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		CreatedAt:     t.CreatedAt,
	}
}
