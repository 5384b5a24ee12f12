package service

import (
	"context"
	"time"

	"expense-tracker/internal/models"

	"github.com/google/uuid"
)

// The store interfaces are implemented by internal/repository (Postgres)
// and internal/repository/memory. Lookups return repository.ErrNotFound,
// unique violations repository.ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type WorkspaceStore interface {
	FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*models.Workspace, error)
	CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	IsOwner(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
}

type InviteStore interface {
	Create(ctx context.Context, inv *models.WorkspaceInvite) error
	HasActive(ctx context.Context, workspaceID uuid.UUID, email string, now time.Time) (bool, error)
	GetByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error)
	ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]*models.WorkspaceInvite, error)
	Accept(ctx context.Context, inviteID uuid.UUID, member *models.WorkspaceMember, at time.Time) error
	Reject(ctx context.Context, inviteID uuid.UUID, at time.Time) error
}

type CategoryStore interface {
	List(ctx context.Context, workspaceID uuid.UUID) ([]*models.Category, error)
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	HasTransactions(ctx context.Context, workspaceID, id uuid.UUID) (bool, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*models.Transaction, error)
	Search(ctx context.Context, workspaceID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error)
}

type ReportStore interface {
	MonthlySummary(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) (models.MonthlySummary, error)
	TotalsByCategory(ctx context.Context, workspaceID uuid.UUID, from, to time.Time, txType models.TransactionType) ([]models.CategoryTotal, error)
	RecentTransactions(ctx context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]*models.Transaction, error)
}
