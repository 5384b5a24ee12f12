package repository

import (
	"context"

	"expense-tracker/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var categoryColumns = []string{"id", "workspace_id", "created_by_user_id", "user_id", "name", "type", "color", "created_at"}

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) List(ctx context.Context, workspaceID uuid.UUID) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(squirrel.Eq{"workspace_id": workspaceID}).
		OrderBy("name ASC").
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

	var categories []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"workspace_id": workspaceID, "id": id})
}

func (r *CategoryRepository) GetByName(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"workspace_id": workspaceID, "name": name})
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(c.ID, c.WorkspaceID, c.CreatedByUserID, c.UserID, c.Name, c.Type, c.Color, c.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	_, err := exec(ctx, r.db, query)
	return err
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := squirrel.Update("categories").
		Set("name", c.Name).
		Set("type", c.Type).
		Set("color", c.Color).
		Where(squirrel.Eq{"workspace_id": c.WorkspaceID, "id": c.ID}).
		PlaceholderFormat(squirrel.Dollar)

	affected, err := exec(ctx, r.db, query)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := squirrel.Delete("categories").
		Where(squirrel.Eq{"workspace_id": workspaceID, "id": id}).
		PlaceholderFormat(squirrel.Dollar)

	affected, err := exec(ctx, r.db, query)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) HasTransactions(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, squirrel.Select("1").
		From("transactions").
		Where(squirrel.Eq{"workspace_id": workspaceID, "category_id": id}).
		PlaceholderFormat(squirrel.Dollar))
}

func (r *CategoryRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCategory(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.WorkspaceID, &c.CreatedByUserID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
