package models

import (
	"time"

	"github.com/google/uuid"
)

// PersonalWorkspaceName is the name of the workspace provisioned for every
// user on first access.
const PersonalWorkspaceName = "Personal"

// InviteTTL is how long an invite stays acceptable.
const InviteTTL = 7 * 24 * time.Hour

type Workspace struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	OwnerID   uuid.UUID `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

type WorkspaceMember struct {
	ID          uuid.UUID `db:"id"`
	WorkspaceID uuid.UUID `db:"workspace_id"`
	UserID      uuid.UUID `db:"user_id"`
	IsOwner     bool      `db:"is_owner"`
	CreatedAt   time.Time `db:"created_at"`
}

// Membership is a member row joined with its workspace name.
type Membership struct {
	WorkspaceID uuid.UUID
	Name        string
	IsOwner     bool
}

// WorkspaceResolution is the outcome of mapping a request to a workspace.
// FellBack is set when the caller asked for a workspace (Requested) but was
// routed to the personal workspace instead.
type WorkspaceResolution struct {
	WorkspaceID uuid.UUID
	Requested   bool
	FellBack    bool
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
	InviteStatusExpired  InviteStatus = "expired"
)

type WorkspaceInvite struct {
	ID              uuid.UUID  `db:"id"`
	WorkspaceID     uuid.UUID  `db:"workspace_id"`
	WorkspaceName   string     `db:"-"`
	InvitedEmail    string     `db:"invited_email"`
	Token           string     `db:"token"`
	InvitedByUserID uuid.UUID  `db:"invited_by_user_id"`
	ExpiresAt       time.Time  `db:"expires_at"`
	AcceptedAt      *time.Time `db:"accepted_at"`
	RejectedAt      *time.Time `db:"rejected_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Status derives the lifecycle state at the given instant.
func (i *WorkspaceInvite) Status(now time.Time) InviteStatus {
	switch {
	case i.AcceptedAt != nil:
		return InviteStatusAccepted
	case i.RejectedAt != nil:
		return InviteStatusRejected
	case !now.Before(i.ExpiresAt):
		return InviteStatusExpired
	default:
		return InviteStatusPending
	}
}
