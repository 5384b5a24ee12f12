package handlers

import (
	"errors"

	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// Summary godoc
// @Summary Monthly summary
// @Description Income, expense and balance for one calendar month
// @Tags reports
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} map[string]string
// @Router /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.reportService.Summary(c.UserContext(), workspaceID, c.QueryInt("year", 0), c.QueryInt("month", 0))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build summary")
	}
	return c.JSON(resp)
}

// ByCategory godoc
// @Summary Totals by category
// @Description Per-category totals for one month, largest first
// @Tags reports
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param type query int false "0 expense (default), 1 income"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {array} dto.CategoryTotalResponse
// @Failure 400 {object} map[string]string
// @Router /api/reports/by-category [get]
func (h *ReportHandler) ByCategory(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.reportService.ByCategory(c.UserContext(), workspaceID,
		c.QueryInt("year", 0), c.QueryInt("month", 0), c.QueryInt("type", 0))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build category report")
	}
	return c.JSON(items)
}

// ByCategoryChart godoc
// @Summary Totals by category as a pie chart
// @Tags reports
// @Produce png
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param type query int false "0 expense (default), 1 income"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {file} binary
// @Success 204 "No data for the month"
// @Failure 400 {object} map[string]string
// @Router /api/reports/by-category/chart [get]
func (h *ReportHandler) ByCategoryChart(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	png, err := h.reportService.ByCategoryChart(c.UserContext(), workspaceID,
		c.QueryInt("year", 0), c.QueryInt("month", 0), c.QueryInt("type", 0))
	if errors.Is(err, service.ErrNoChartData) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return respondError(c, h.logger, err, "Failed to render chart")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// Recent godoc
// @Summary Recent transactions
// @Description Transactions created in the last 24 hours
// @Tags reports
// @Produce json
// @Param take query int false "Max items (default 10, up to 50)"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Router /api/reports/recent [get]
func (h *ReportHandler) Recent(c *fiber.Ctx) error {
	_, workspaceID, err := scope(c)
	if err != nil {
		return unauthorized(c)
	}

	take, ok := queryTake(c)
	if !ok {
		return badRequest(c, "take must be an integer")
	}

	items, err := h.reportService.Recent(c.UserContext(), workspaceID, take)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list recent transactions")
	}
	return c.JSON(items)
}
