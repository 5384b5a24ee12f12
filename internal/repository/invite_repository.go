package repository

import (
	"context"
	"time"

	"expense-tracker/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var inviteColumns = []string{
	"i.id", "i.workspace_id", "w.name", "i.invited_email", "i.token", "i.invited_by_user_id",
	"i.expires_at", "i.accepted_at", "i.rejected_at", "i.created_at",
}

type InviteRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInviteRepository(db *pgxpool.Pool, logger *zap.Logger) *InviteRepository {
	return &InviteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InviteRepository) Create(ctx context.Context, inv *models.WorkspaceInvite) error {
	query := squirrel.Insert("workspace_invites").
		Columns("id", "workspace_id", "invited_email", "token", "invited_by_user_id", "expires_at", "created_at").
		Values(inv.ID, inv.WorkspaceID, inv.InvitedEmail, inv.Token, inv.InvitedByUserID, inv.ExpiresAt, inv.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	_, err := exec(ctx, r.db, query)
	return err
}

func (r *InviteRepository) HasActive(ctx context.Context, workspaceID uuid.UUID, email string, now time.Time) (bool, error) {
	return exists(ctx, r.db, squirrel.Select("1").
		From("workspace_invites").
		Where(squirrel.Eq{"workspace_id": workspaceID, "invited_email": email, "accepted_at": nil, "rejected_at": nil}).
		Where(squirrel.Gt{"expires_at": now}).
		PlaceholderFormat(squirrel.Dollar))
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	query := r.selectInvites().Where(squirrel.Eq{"i.token": token})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	inv, err := scanInvite(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return inv, nil
}

func (r *InviteRepository) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]*models.WorkspaceInvite, error) {
	query := r.selectInvites().
		Where(squirrel.Eq{"i.invited_email": email, "i.accepted_at": nil, "i.rejected_at": nil}).
		Where(squirrel.Gt{"i.expires_at": now}).
		OrderBy("i.expires_at DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var invites []*models.WorkspaceInvite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// Accept marks the invite accepted and adds the membership in one transaction.
// ErrStale means another request already accepted or rejected it.
func (r *InviteRepository) Accept(ctx context.Context, inviteID uuid.UUID, member *models.WorkspaceMember, at time.Time) error {
	return mapError(pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := markHandled(ctx, tx, inviteID, "accepted_at", at); err != nil {
			return err
		}
		_, err := exec(ctx, tx, insertMember(member))
		return err
	}))
}

func (r *InviteRepository) Reject(ctx context.Context, inviteID uuid.UUID, at time.Time) error {
	return markHandled(ctx, r.db, inviteID, "rejected_at", at)
}

func markHandled(ctx context.Context, q querier, inviteID uuid.UUID, column string, at time.Time) error {
	update := squirrel.Update("workspace_invites").
		Set(column, at).
		Where(squirrel.Eq{"id": inviteID, "accepted_at": nil, "rejected_at": nil}).
		PlaceholderFormat(squirrel.Dollar)

	affected, err := exec(ctx, q, update)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStale
	}
	return nil
}

func (r *InviteRepository) selectInvites() squirrel.SelectBuilder {
	return squirrel.Select(inviteColumns...).
		From("workspace_invites i").
		Join("workspaces w ON w.id = i.workspace_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanInvite(row pgx.Row) (*models.WorkspaceInvite, error) {
	var inv models.WorkspaceInvite
	err := row.Scan(
		&inv.ID, &inv.WorkspaceID, &inv.WorkspaceName, &inv.InvitedEmail, &inv.Token, &inv.InvitedByUserID,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.RejectedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
