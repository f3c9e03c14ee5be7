package handler

import (
	"errors"
	"masterdata-web/internal/models"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Store
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Username == "" || req.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Username and password are required", nil)
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, models.ErrAuthenticationFailed) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, err.Error(), nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", err)
	}

	return utils.SuccessResponse(c, "Login successful", resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	// JWTs are dropped client side
	return utils.SuccessResponse(c, "Logout successful", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Not authenticated", nil)
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", err)
	}

	return utils.SuccessResponse(c, "User retrieved successfully", user)
}

// WebLogin handles the login form and starts a browser session.
func (h *AuthHandler) WebLogin(c *fiber.Ctx) error {
	req := models.LoginRequest{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	if _, err := h.authService.WebLogin(req, c, h.sessions); err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("auth/login", fiber.Map{
			"Title":     "Login",
			"Error":     "Invalid username or password",
			"LoginName": req.Username,
		}, "layouts/main")
	}

	return c.Redirect("/")
}

func (h *AuthHandler) WebLogout(c *fiber.Ctx) error {
	if err := h.authService.WebLogout(c, h.sessions); err != nil {
		utils.GetLogger().WithError(err).Warn("Failed to destroy session")
	}
	return c.Redirect("/login")
}
