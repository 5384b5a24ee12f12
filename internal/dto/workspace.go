package dto

import "time"

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type InviteRequest struct {
	Email string `json:"email"`
}

type InviteTokenRequest struct {
	Token string `json:"token"`
}

type WorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	IsOwner     bool   `json:"isOwner"`
}

type InviteCreatedResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PendingInviteResponse struct {
	Token         string    `json:"token"`
	WorkspaceID   string    `json:"workspaceId"`
	WorkspaceName string    `json:"workspaceName"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
