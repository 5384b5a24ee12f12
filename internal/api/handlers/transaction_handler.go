package handlers

import (
	"expense-tracker/internal/dto"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
	logger             *zap.Logger
}

func NewTransactionHandler(transactionService *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List godoc
// @Summary List transactions
// @Description Newest first by date, then by creation time
// @Tags transactions
// @Produce json
// @Param take query int false "Max items (default 50, up to 200)"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	take, ok := queryTake(c)
	if !ok {
		return badRequest(c, "take must be an integer")
	}

	items, err := h.transactionService.List(c.UserContext(), workspaceID, take)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}
	return c.JSON(items)
}

// Search godoc
// @Summary Search transactions
// @Description Filter by category name substring and creation date range
// @Tags transactions
// @Produce json
// @Param categoryName query string false "Category name contains (case-insensitive)"
// @Param createdFrom query string false "Created on or after (YYYY-MM-DD or RFC3339)"
// @Param createdTo query string false "Created on or before (YYYY-MM-DD)"
// @Param take query int false "Max items (default 200, up to 500)"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Router /api/transactions/search [get]
func (h *TransactionHandler) Search(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	take, ok := queryTake(c)
	if !ok {
		return badRequest(c, "take must be an integer")
	}

	q := dto.TransactionSearchQuery{
		CategoryName: c.Query("categoryName"),
		CreatedFrom:  c.Query("createdFrom"),
		CreatedTo:    c.Query("createdTo"),
		Take:         take,
	}

	items, err := h.transactionService.Search(c.UserContext(), workspaceID, &q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to search transactions")
	}
	return c.JSON(items)
}

// Get godoc
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	item, err := h.transactionService.Get(c.UserContext(), workspaceID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get transaction")
	}
	return c.JSON(item)
}

// Create godoc
// @Summary Create transaction
// @Description Type is 0 expense or 1 income; amount must be positive
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.TransactionRequest true "Transaction"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	userID, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := h.transactionService.Create(c.UserContext(), userID, workspaceID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update godoc
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.TransactionRequest true "Transaction"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	var req dto.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := h.transactionService.Update(c.UserContext(), workspaceID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}
	return c.JSON(item)
}

// Delete godoc
// @Summary Delete transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	if err := h.transactionService.Delete(c.UserContext(), workspaceID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
