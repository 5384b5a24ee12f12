package handlers

import (
	"expense-tracker/internal/dto"
	"expense-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Register with email, full name and password; returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/Authentication/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Registration failed")
	}

	return c.JSON(resp)
}

// Login godoc
// @Summary Login user
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} map[string]string
// @Router /api/Authentication/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Login failed")
	}

	return c.JSON(resp)
}

// Me godoc
// @Summary Current user
// @Description Account behind the bearer token; 401 when it no longer exists
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} map[string]string
// @Router /api/Authentication/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.GetUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load user")
	}

	return c.JSON(dto.MeResponse{
		UserID: user.ID.String(),
		Email:  user.Email,
	})
}
