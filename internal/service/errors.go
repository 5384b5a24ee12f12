package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	ErrWorkspaceExists       = errors.New("workspace already exists")
	ErrWorkspaceAccessDenied = errors.New("not a member of the requested workspace")
	ErrNotWorkspaceOwner     = errors.New("only the workspace owner can do this")

	ErrInviteNotFound      = errors.New("invalid token")
	ErrInviteExpired       = errors.New("invite expired")
	ErrInviteHandled       = errors.New("invite already handled")
	ErrInviteEmailMismatch = errors.New("invite was issued to another email")
	ErrInvitePending       = errors.New("invite already pending for this email")
	ErrMissingEmailClaim   = errors.New("missing email claim")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category with this name already exists in this account")
	ErrCategoryInUse     = errors.New("cannot delete category that has transactions")

	ErrTransactionNotFound = errors.New("transaction not found")

	ErrNoChartData = errors.New("no data to chart")

	ErrAIUnavailable       = errors.New("AI extraction is not configured")
	ErrMalformedExtraction = errors.New("AI returned a malformed transaction")
)

// ValidationError reports bad client input; Message is safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError carries a failed call to the model provider. Status is the
// HTTP status when the provider answered, 0 for transport failures.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "AI provider error: " + e.Body
	}
	return fmt.Sprintf("AI provider error %d: %s", e.Status, e.Body)
}
