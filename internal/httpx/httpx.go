package httpx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/models"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func NotFound(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

func Conflict(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusConflict, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// DispatchStatus maps a realtime error code onto the closest HTTP status.
func DispatchStatus(err error) int {
	var de *dispatch.Error
	if !errors.As(err, &de) {
		return fiber.StatusInternalServerError
	}
	switch de {
	case dispatch.ErrMissingToken, dispatch.ErrInvalidToken:
		return fiber.StatusUnauthorized
	case dispatch.ErrUserUnavailable, dispatch.ErrNotChannelMember, dispatch.ErrForbidden:
		return fiber.StatusForbidden
	case dispatch.ErrMessageNotFound:
		return fiber.StatusNotFound
	case dispatch.ErrPersistence:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusBadRequest
}

// Dispatch renders an error returned by the realtime engine.
func Dispatch(c *fiber.Ctx, err error) error {
	status := DispatchStatus(err)
	if status == fiber.StatusInternalServerError {
		return Internal(c, "internal_error")
	}
	return Error(c, status, dispatch.CodeOf(err), dispatch.PublicMessage(err))
}

func LocalUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Locals(key)
	if v == nil {
		return 0, fmt.Errorf("missing local %s", key)
	}
	u, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid local %s", key)
	}
	return u, nil
}

// LocalUser returns the identity stored by the auth middleware.
func LocalUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, errors.New("missing local user")
	}
	return user, nil
}

// ParamID parses a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}
