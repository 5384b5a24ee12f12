package handlers

import (
	"io"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AIHandler struct {
	aiService *service.AITransactionService
	logger    *zap.Logger
}

func NewAIHandler(aiService *service.AITransactionService, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		logger:    logger,
	}
}

// FromText godoc
// @Summary Create transaction from free text
// @Description The text is sent to the model and the extracted transaction is stored
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.AITextRequest true "Text"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.AITransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/ai/transactions/from-text [post]
func (h *AIHandler) FromText(c *fiber.Ctx) error {
	userID, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.AITextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.aiService.CreateFromText(c.UserContext(), userID, workspaceID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to process text")
	}
	return c.JSON(resp)
}

// FromReceipt godoc
// @Summary Create transaction from a receipt
// @Description Accepts a PDF or image receipt
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt (PDF, JPEG, PNG)"
// @Param note formData string false "Extra note for the model"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.AITransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/ai/transactions/from-receipt [post]
func (h *AIHandler) FromReceipt(c *fiber.Ctx) error {
	userID, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Missing file.")
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded receipt", zap.Error(err))
		return badRequest(c, "Failed to read file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.logger.Error("Failed to read uploaded receipt", zap.Error(err))
		return badRequest(c, "Failed to read file")
	}

	note := c.FormValue("note")
	if note == "" {
		note = c.FormValue("extraNote")
	}

	resp, err := h.aiService.CreateFromReceipt(c.UserContext(), userID, workspaceID,
		data, file.Filename, file.Header.Get(fiber.HeaderContentType), note)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to process receipt")
	}
	return c.JSON(resp)
}
