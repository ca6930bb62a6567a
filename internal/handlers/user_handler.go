package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfile changes nickname and/or avatar and relays the change to
// everyone online.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.Nickname == nil && input.Avatar == nil {
		return httpx.BadRequest(c, "nothing_to_update", "Nothing to update")
	}

	user, err := h.userService.UpdateProfile(userID, input)
	switch {
	case errors.Is(err, service.ErrInvalidNickname):
		return httpx.BadRequest(c, "invalid_nickname", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return httpx.NotFound(c, "user_not_found", "User not found")
	case err != nil:
		return httpx.Internal(c, "update_profile_failed")
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}
