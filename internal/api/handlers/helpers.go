package handlers

import (
	"errors"
	"strconv"

	"expense-tracker/internal/service"
	"expense-tracker/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func getEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(middleware.LocalEmail).(string)
	return email
}

// scope returns the caller and the workspace resolved by WorkspaceMiddleware.
func scope(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	workspaceID, ok := c.Locals(middleware.LocalWorkspaceID).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, workspaceID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// queryTake returns nil when the take parameter is absent.
func queryTake(c *fiber.Ctx) (*int, bool) {
	raw := c.Query("take")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// respondError maps service errors to HTTP statuses. Unknown errors are
// logged and reported as 500 with the generic message.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, generic string) error {
	var validation *service.ValidationError
	var upstream *service.UpstreamError

	status := fiber.StatusInternalServerError
	msg := generic

	switch {
	case errors.As(err, &validation):
		status, msg = fiber.StatusBadRequest, validation.Message
	case errors.As(err, &upstream):
		status, msg = fiber.StatusBadGateway, upstream.Error()
	case errors.Is(err, service.ErrMalformedExtraction):
		status, msg = fiber.StatusBadGateway, err.Error()
	case errors.Is(err, service.ErrAIUnavailable):
		status, msg = fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrUserNotFound):
		status, msg = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotWorkspaceOwner),
		errors.Is(err, service.ErrInviteEmailMismatch):
		status, msg = fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrInviteNotFound):
		status, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrWorkspaceExists),
		errors.Is(err, service.ErrCategoryNameTaken),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrInvitePending):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInviteExpired),
		errors.Is(err, service.ErrInviteHandled),
		errors.Is(err, service.ErrMissingEmailClaim):
		status, msg = fiber.StatusBadRequest, err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error(generic, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
