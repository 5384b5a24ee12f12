package handlers

import (
	"expense-tracker/internal/dto"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	logger           *zap.Logger
}

func NewWorkspaceHandler(workspaceService *service.WorkspaceService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// Me godoc
// @Summary My workspaces
// @Description Workspaces the caller belongs to; the Personal workspace is created on first call
// @Tags workspaces
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.WorkspaceResponse
// @Router /api/workspaces/me [get]
func (h *WorkspaceHandler) Me(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.workspaceService.ListMine(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list workspaces")
	}
	return c.JSON(items)
}

// Create godoc
// @Summary Create workspace
// @Tags workspaces
// @Accept json
// @Produce json
// @Param request body dto.CreateWorkspaceRequest true "Workspace"
// @Security Bearer
// @Success 200 {object} dto.WorkspaceResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/workspaces [post]
func (h *WorkspaceHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateWorkspaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.workspaceService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create workspace")
	}
	return c.JSON(resp)
}

// Invite godoc
// @Summary Invite by email
// @Description Owner only; the invite token is returned in the response
// @Tags workspaces
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param request body dto.InviteRequest true "Invitee"
// @Security Bearer
// @Success 200 {object} dto.InviteCreatedResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/workspaces/{id}/invite [post]
func (h *WorkspaceHandler) Invite(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	workspaceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid workspace ID")
	}

	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.workspaceService.Invite(c.UserContext(), userID, workspaceID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create invite")
	}
	return c.JSON(resp)
}

// Invites godoc
// @Summary Pending invites
// @Description Unexpired pending invites addressed to the caller's email
// @Tags workspaces
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.PendingInviteResponse
// @Router /api/workspaces/invites [get]
func (h *WorkspaceHandler) Invites(c *fiber.Ctx) error {
	items, err := h.workspaceService.ListInvites(c.UserContext(), getEmail(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list invites")
	}
	return c.JSON(items)
}

// Accept godoc
// @Summary Accept invite
// @Tags workspaces
// @Accept json
// @Produce json
// @Param request body dto.InviteTokenRequest true "Invite token"
// @Security Bearer
// @Success 200 {object} dto.WorkspaceResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/workspaces/accept [post]
func (h *WorkspaceHandler) Accept(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.InviteTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.workspaceService.Accept(c.UserContext(), userID, getEmail(c), req.Token)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to accept invite")
	}
	return c.JSON(resp)
}

// Reject godoc
// @Summary Reject invite
// @Tags workspaces
// @Accept json
// @Param request body dto.InviteTokenRequest true "Invite token"
// @Security Bearer
// @Success 200
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/workspaces/reject [post]
func (h *WorkspaceHandler) Reject(c *fiber.Ctx) error {
	var req dto.InviteTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.workspaceService.Reject(c.UserContext(), getEmail(c), req.Token); err != nil {
		return respondError(c, h.logger, err, "Failed to reject invite")
	}
	return c.SendStatus(fiber.StatusOK)
}
