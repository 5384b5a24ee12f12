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
	minWorkspaceName = 2
	maxWorkspaceName = 100
	minInviteEmail   = 5
)

type WorkspaceService struct {
	workspaces WorkspaceStore
	invites    InviteStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkspaceService(workspaces WorkspaceStore, invites InviteStore, logger *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaces: workspaces,
		invites:    invites,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreatePersonalWorkspace returns the caller's Personal workspace,
// provisioning it together with the owner membership on first use.
// Concurrent first calls collide on the per-owner unique index and the
// loser returns the winner's row.
func (s *WorkspaceService) GetOrCreatePersonalWorkspace(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	ws, err := s.workspaces.FindByOwnerAndName(ctx, userID, models.PersonalWorkspaceName)
	if err == nil {
		return ws.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, err
	}

	now := s.now()
	created := &models.Workspace{
		ID:        uuid.New(),
		Name:      models.PersonalWorkspaceName,
		OwnerID:   userID,
		CreatedAt: now,
	}
	owner := &models.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: created.ID,
		UserID:      userID,
		IsOwner:     true,
		CreatedAt:   now,
	}

	if err := s.workspaces.CreateWithOwner(ctx, created, owner); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return uuid.Nil, err
		}
		ws, err = s.workspaces.FindByOwnerAndName(ctx, userID, models.PersonalWorkspaceName)
		if err != nil {
			return uuid.Nil, err
		}
		return ws.ID, nil
	}

	s.logger.Info("Personal workspace provisioned",
		zap.String("user_id", userID.String()),
		zap.String("workspace_id", created.ID.String()),
	)
	return created.ID, nil
}

// Resolve maps the X-Workspace-Id header value to the workspace the request
// operates in. A blank, unparsable or foreign header resolves to the
// caller's Personal workspace with FellBack set.
func (s *WorkspaceService) Resolve(ctx context.Context, userID uuid.UUID, header string) (models.WorkspaceResolution, error) {
	header = strings.TrimSpace(header)
	res := models.WorkspaceResolution{Requested: header != ""}

	if res.Requested {
		if id, err := uuid.Parse(header); err == nil {
			member, err := s.workspaces.IsMember(ctx, id, userID)
			if err != nil {
				return res, err
			}
			if member {
				res.WorkspaceID = id
				return res, nil
			}
		}
		res.FellBack = true
	}

	personal, err := s.GetOrCreatePersonalWorkspace(ctx, userID)
	if err != nil {
		return res, err
	}
	res.WorkspaceID = personal
	return res, nil
}

// ResolveWorkspace is Resolve without the fallback detail.
func (s *WorkspaceService) ResolveWorkspace(ctx context.Context, userID uuid.UUID, header string) (uuid.UUID, error) {
	res, err := s.Resolve(ctx, userID, header)
	if err != nil {
		return uuid.Nil, err
	}
	return res.WorkspaceID, nil
}

func (s *WorkspaceService) IsOwner(ctx context.Context, userID, workspaceID uuid.UUID) (bool, error) {
	return s.workspaces.IsOwner(ctx, workspaceID, userID)
}

func (s *WorkspaceService) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.WorkspaceResponse, error) {
	if _, err := s.GetOrCreatePersonalWorkspace(ctx, userID); err != nil {
		return nil, err
	}

	memberships, err := s.workspaces.ListMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WorkspaceResponse, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, dto.WorkspaceResponse{
			WorkspaceID: m.WorkspaceID.String(),
			Name:        m.Name,
			IsOwner:     m.IsOwner,
		})
	}
	return items, nil
}

func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateWorkspaceRequest) (*dto.WorkspaceResponse, error) {
	name := strings.TrimSpace(sanitizeUTF8(req.Name))
	if n := len([]rune(name)); n < minWorkspaceName || n > maxWorkspaceName {
		return nil, invalid("name must be between %d and %d characters", minWorkspaceName, maxWorkspaceName)
	}

	if name == models.PersonalWorkspaceName {
		_, err := s.workspaces.FindByOwnerAndName(ctx, userID, name)
		if err == nil {
			return nil, ErrWorkspaceExists
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	now := s.now()
	ws := &models.Workspace{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
	}
	owner := &models.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		UserID:      userID,
		IsOwner:     true,
		CreatedAt:   now,
	}
	if err := s.workspaces.CreateWithOwner(ctx, ws, owner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrWorkspaceExists
		}
		return nil, err
	}

	s.logger.Info("Workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("owner_id", userID.String()),
	)
	return &dto.WorkspaceResponse{WorkspaceID: ws.ID.String(), Name: ws.Name, IsOwner: true}, nil
}

// Invite issues a single-use token letting the holder of email join the workspace.
func (s *WorkspaceService) Invite(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.InviteRequest) (*dto.InviteCreatedResponse, error) {
	email := normalizeEmail(req.Email)
	if len(email) < minInviteEmail || !strings.Contains(email, "@") {
		return nil, invalid("a valid email is required")
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return nil, invalid("email must be at most %d characters", maxEmailLength)
	}

	owner, err := s.workspaces.IsOwner(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotWorkspaceOwner
	}

	now := s.now()
	pending, err := s.invites.HasActive(ctx, workspaceID, email, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrInvitePending
	}

	inv := &models.WorkspaceInvite{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		InvitedEmail:    email,
		Token:           newInviteToken(),
		InvitedByUserID: userID,
		ExpiresAt:       now.Add(models.InviteTTL),
		CreatedAt:       now,
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Workspace invite created",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("invite_id", inv.ID.String()),
	)
	return &dto.InviteCreatedResponse{Token: inv.Token, ExpiresAt: inv.ExpiresAt}, nil
}

func (s *WorkspaceService) ListInvites(ctx context.Context, email string) ([]dto.PendingInviteResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return []dto.PendingInviteResponse{}, nil
	}

	invites, err := s.invites.ListActiveByEmail(ctx, email, s.now())
	if err != nil {
		return nil, err
	}

	items := make([]dto.PendingInviteResponse, 0, len(invites))
	for _, inv := range invites {
		items = append(items, dto.PendingInviteResponse{
			Token:         inv.Token,
			WorkspaceID:   inv.WorkspaceID.String(),
			WorkspaceName: inv.WorkspaceName,
			ExpiresAt:     inv.ExpiresAt,
		})
	}
	return items, nil
}

// Accept joins the caller to the invite's workspace as a non-owner member.
func (s *WorkspaceService) Accept(ctx context.Context, userID uuid.UUID, email, token string) (*dto.WorkspaceResponse, error) {
	inv, now, err := s.pendingInvite(ctx, email, token)
	if err != nil {
		return nil, err
	}

	member := &models.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: inv.WorkspaceID,
		UserID:      userID,
		IsOwner:     false,
		CreatedAt:   now,
	}
	if err := s.invites.Accept(ctx, inv.ID, member, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrInviteHandled
		}
		return nil, err
	}

	s.logger.Info("Workspace invite accepted",
		zap.String("workspace_id", inv.WorkspaceID.String()),
		zap.String("user_id", userID.String()),
	)
	return &dto.WorkspaceResponse{WorkspaceID: inv.WorkspaceID.String(), Name: inv.WorkspaceName, IsOwner: false}, nil
}

func (s *WorkspaceService) Reject(ctx context.Context, email, token string) error {
	inv, now, err := s.pendingInvite(ctx, email, token)
	if err != nil {
		return err
	}

	if err := s.invites.Reject(ctx, inv.ID, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return ErrInviteHandled
		}
		return err
	}

	s.logger.Info("Workspace invite rejected", zap.String("invite_id", inv.ID.String()))
	return nil
}

func (s *WorkspaceService) pendingInvite(ctx context.Context, email, token string) (*models.WorkspaceInvite, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, time.Time{}, ErrMissingEmailClaim
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, time.Time{}, invalid("token is required")
	}

	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, time.Time{}, ErrInviteNotFound
		}
		return nil, time.Time{}, err
	}

	now := s.now()
	switch inv.Status(now) {
	case models.InviteStatusAccepted, models.InviteStatusRejected:
		return nil, now, ErrInviteHandled
	case models.InviteStatusExpired:
		return nil, now, ErrInviteExpired
	}
	if inv.InvitedEmail != email {
		return nil, now, ErrInviteEmailMismatch
	}
	return inv, now, nil
}

// newInviteToken returns 32 lowercase hex characters.
func newInviteToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
