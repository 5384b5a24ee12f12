package middleware

import (
	"context"

	"expense-tracker/internal/models"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkspaceHeader selects the workspace a request operates in.
const WorkspaceHeader = "X-Workspace-Id"

// WorkspaceResolver maps a user and header value to a workspace.
type WorkspaceResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, header string) (models.WorkspaceResolution, error)
}

// WorkspaceMiddleware stores the resolved workspace id under
// LocalWorkspaceID. It must run after AuthMiddleware. With strict set, a
// header naming a workspace the caller cannot access is refused with 403
// instead of falling back to the Personal workspace.
func WorkspaceMiddleware(resolver WorkspaceResolver, strict bool, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, _ := c.Locals(LocalUserID).(string)
		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid user id claim",
			})
		}

		res, err := resolver.Resolve(c.UserContext(), userID, c.Get(WorkspaceHeader))
		if err != nil {
			logger.Error("Failed to resolve workspace", zap.String("user_id", raw), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve workspace",
			})
		}

		if res.FellBack {
			if strict {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": service.ErrWorkspaceAccessDenied.Error(),
				})
			}
			logger.Debug("Workspace header ignored, using personal workspace",
				zap.String("user_id", raw),
				zap.String("header", c.Get(WorkspaceHeader)),
			)
		}

		c.Locals(LocalWorkspaceID, res.WorkspaceID)
		return c.Next()
	}
}
