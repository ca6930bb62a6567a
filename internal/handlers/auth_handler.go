package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}

	if input.Username == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_credentials", "Username and password are required")
	}

	result, err := h.authService.Login(input)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid username or password")
	case errors.Is(err, service.ErrAccountDisabled):
		return httpx.Forbidden(c, "account_disabled", "Account is disabled")
	case err != nil:
		return httpx.Internal(c, "login_failed")
	}

	return c.JSON(result)
}

func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetUserByID(userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return httpx.NotFound(c, "user_not_found", "User not found")
	}
	if err != nil {
		return httpx.Internal(c, "profile_failed")
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}
