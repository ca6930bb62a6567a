package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/stretchr/testify/require"
)

func TestDispatchStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{dispatch.ErrMissingToken, fiber.StatusUnauthorized},
		{dispatch.ErrInvalidToken, fiber.StatusUnauthorized},
		{dispatch.ErrUserUnavailable, fiber.StatusForbidden},
		{dispatch.ErrNotChannelMember, fiber.StatusForbidden},
		{dispatch.ErrInvalidMessage, fiber.StatusBadRequest},
		{dispatch.ErrMessageNotFound, fiber.StatusNotFound},
		{errors.Join(dispatch.ErrPersistence, errors.New("db down")), fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, DispatchStatus(tt.err))
		})
	}
}

func TestDispatchRendersCode(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("requestid", "req-1")
		return Dispatch(c, dispatch.ErrInvalidMessage)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "invalid_message", out.Code)
	require.Equal(t, "req-1", out.RequestID)
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	app.Get("/c/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return BadRequest(c, "invalid_id", err.Error())
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, want := range map[string]int{"/c/7": 200, "/c/0": 400, "/c/abc": 400, "/c/-1": 400} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		require.Equal(t, want, resp.StatusCode, path)
	}
}
