package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxCategoryName  = 100
	maxCategoryColor = 32
)

type CategoryService struct {
	categories CategoryStore
	logger     *zap.Logger
}

func NewCategoryService(categories CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) List(ctx context.Context, workspaceID uuid.UUID) ([]dto.CategoryResponse, error) {
	categories, err := s.categories.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, toCategoryResponse(c))
	}
	return items, nil
}

func (s *CategoryService) Get(ctx context.Context, workspaceID, id uuid.UUID) (*dto.CategoryResponse, error) {
	c, err := s.categories.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *CategoryService) Create(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name, typ, err := validateCategory(req)
	if err != nil {
		return nil, err
	}

	c := &models.Category{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		CreatedByUserID: userID,
		UserID:          userID,
		Name:            name,
		Type:            typ,
		Color:           trimmedOrNil(req.Color),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, workspaceID, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name, typ, err := validateCategory(req)
	if err != nil {
		return nil, err
	}

	c, err := s.categories.GetByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	c.Name = name
	c.Type = typ
	c.Color = trimmedOrNil(req.Color)
	if err := s.categories.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrCategoryNameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *CategoryService) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, workspaceID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	used, err := s.categories.HasTransactions(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if used {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, workspaceID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferenced):
			return ErrCategoryInUse
		case errors.Is(err, repository.ErrNotFound):
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// findOrCreate returns the category named name, creating it with typ when
// the workspace has none. A concurrent insert of the same name is re-read.
func (s *CategoryService) findOrCreate(ctx context.Context, userID, workspaceID uuid.UUID, name string, typ models.CategoryType) (*models.Category, error) {
	c, err := s.categories.GetByName(ctx, workspaceID, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	c = &models.Category{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		CreatedByUserID: userID,
		UserID:          userID,
		Name:            name,
		Type:            typ,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.categories.GetByName(ctx, workspaceID, name)
		}
		return nil, err
	}

	s.logger.Info("Category created on the fly",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("name", name),
	)
	return c, nil
}

func validateCategory(req *dto.CategoryRequest) (string, models.CategoryType, error) {
	name := strings.TrimSpace(sanitizeUTF8(req.Name))
	if name == "" {
		return "", 0, invalid("name is required")
	}
	if len([]rune(name)) > maxCategoryName {
		return "", 0, invalid("name must be at most %d characters", maxCategoryName)
	}
	typ := models.CategoryType(req.Type)
	if !typ.Valid() {
		return "", 0, invalid("type must be 0 (expense), 1 (income) or 2 (both)")
	}
	if color := trimmedOrNil(req.Color); color != nil && utf8.RuneCountInString(*color) > maxCategoryColor {
		return "", 0, invalid("color must be at most %d characters", maxCategoryColor)
	}
	return name, typ, nil
}

func toCategoryResponse(c *models.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      int(c.Type),
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}
