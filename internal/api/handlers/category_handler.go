package handlers

import (
	"expense-tracker/internal/dto"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List godoc
// @Summary List categories
// @Description Categories of the current workspace ordered by name
// @Tags categories
// @Produce json
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {array} dto.CategoryResponse
// @Failure 401 {object} map[string]string
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.categoryService.List(c.UserContext(), workspaceID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list categories")
	}
	return c.JSON(items)
}

// Get godoc
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} map[string]string
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	item, err := h.categoryService.Get(c.UserContext(), workspaceID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get category")
	}
	return c.JSON(item)
}

// Create godoc
// @Summary Create category
// @Description Type is 0 expense, 1 income, 2 both
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.CategoryRequest true "Category"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	userID, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := h.categoryService.Create(c.UserContext(), userID, workspaceID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create category")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update godoc
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body dto.CategoryRequest true "Category"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := h.categoryService.Update(c.UserContext(), workspaceID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update category")
	}
	return c.JSON(item)
}

// Delete godoc
// @Summary Delete category
// @Description Fails with 409 while transactions reference the category
// @Tags categories
// @Param id path string true "Category ID"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	if err := h.categoryService.Delete(c.UserContext(), workspaceID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
