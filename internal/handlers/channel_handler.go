package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/service"
)

type ChannelHandler struct {
	channelService *service.ChannelService
}

func NewChannelHandler(channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) ListChannels(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	channels, err := h.channelService.ListForUser(userID)
	if err != nil {
		return httpx.Internal(c, "list_channels_failed")
	}
	return c.JSON(fiber.Map{"channels": channels})
}

func (h *ChannelHandler) CreateChannel(c *fiber.Ctx) error {
	actor, err := httpx.LocalUser(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateChannelInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	channel, err := h.channelService.Create(actor, input)
	if err != nil {
		return channelError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"channel": channel})
}

func (h *ChannelHandler) ReplaceMembers(c *fiber.Ctx) error {
	actor, err := httpx.LocalUser(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	channelID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_channel_id", "Invalid channel id")
	}

	var input service.ReplaceMembersInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	channel, err := h.channelService.ReplaceMembers(actor, channelID, input)
	if err != nil {
		return channelError(c, err)
	}
	return c.JSON(fiber.Map{"channel": channel})
}

func (h *ChannelHandler) Announce(c *fiber.Ctx) error {
	actor, err := httpx.LocalUser(c)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	channelID, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_channel_id", "Invalid channel id")
	}

	var input service.AnnounceInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	delivered, err := h.channelService.Announce(actor, channelID, input)
	if err != nil {
		return channelError(c, err)
	}
	return c.JSON(fiber.Map{"delivered": delivered})
}

func channelError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrChannelNotFound):
		return httpx.NotFound(c, "channel_not_found", "Channel not found")
	case errors.Is(err, service.ErrChannelNameTaken):
		return httpx.Conflict(c, "channel_name_taken", err.Error())
	case errors.Is(err, service.ErrInvalidChannelName), errors.Is(err, service.ErrUnknownMember):
		return httpx.BadRequest(c, "invalid_channel", err.Error())
	}
	if httpx.DispatchStatus(err) != fiber.StatusInternalServerError {
		return httpx.Dispatch(c, err)
	}
	return httpx.Internal(c, "channel_update_failed")
}
