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

type WorkspaceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkspaceRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WorkspaceRepository) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*models.Workspace, error) {
	query := squirrel.Select("id", "name", "owner_id", "created_at").
		From("workspaces").
		Where(squirrel.Eq{"owner_id": ownerID, "name": name}).
		OrderBy("created_at").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var ws models.Workspace
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &ws, nil
}

// CreateWithOwner inserts the workspace and its owner membership atomically.
func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error {
	return mapError(pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		insertWorkspace := squirrel.Insert("workspaces").
			Columns("id", "name", "owner_id", "created_at").
			Values(ws.ID, ws.Name, ws.OwnerID, ws.CreatedAt).
			PlaceholderFormat(squirrel.Dollar)
		if _, err := exec(ctx, tx, insertWorkspace); err != nil {
			return err
		}

		_, err := exec(ctx, tx, insertMember(owner))
		return err
	}))
}

func (r *WorkspaceRepository) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, squirrel.Select("1").
		From("workspace_members").
		Where(squirrel.Eq{"workspace_id": workspaceID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar))
}

func (r *WorkspaceRepository) IsOwner(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, squirrel.Select("1").
		From("workspace_members").
		Where(squirrel.Eq{"workspace_id": workspaceID, "user_id": userID, "is_owner": true}).
		PlaceholderFormat(squirrel.Dollar))
}

func (r *WorkspaceRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	query := squirrel.Select("m.workspace_id", "w.name", "m.is_owner").
		From("workspace_members m").
		Join("workspaces w ON w.id = m.workspace_id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("m.is_owner DESC", "w.name ASC").
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

	var items []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.WorkspaceID, &m.Name, &m.IsOwner); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// insertMember is idempotent on (workspace_id, user_id).
func insertMember(m *models.WorkspaceMember) squirrel.InsertBuilder {
	return squirrel.Insert("workspace_members").
		Columns("id", "workspace_id", "user_id", "is_owner", "created_at").
		Values(m.ID, m.WorkspaceID, m.UserID, m.IsOwner, m.CreatedAt).
		Suffix("ON CONFLICT (workspace_id, user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
}
