package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func historyQuery(c *fiber.Ctx) service.HistoryQuery {
	return service.HistoryQuery{
		Limit:  c.QueryInt("limit", service.DefaultHistoryLimit),
		Offset: c.QueryInt("offset", 0),
	}
}

func (h *MessageHandler) GetGroupMessages(c *fiber.Ctx) error {
	messages, err := h.messageService.GroupHistory(historyQuery(c))
	return h.respond(c, messages, err)
}

func (h *MessageHandler) GetPrivateMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	peerID, err := httpx.ParamID(c, "userId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	messages, err := h.messageService.PrivateHistory(userID, peerID, historyQuery(c))
	return h.respond(c, messages, err)
}

func (h *MessageHandler) GetChannelMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	channelID, err := httpx.ParamID(c, "channelId")
	if err != nil {
		return httpx.BadRequest(c, "invalid_channel_id", "Invalid channel id")
	}

	messages, err := h.messageService.ChannelHistory(userID, channelID, historyQuery(c))
	return h.respond(c, messages, err)
}

func (h *MessageHandler) respond(c *fiber.Ctx, messages []models.MessageResponse, err error) error {
	switch {
	case errors.Is(err, service.ErrNotChannelMember):
		return httpx.Forbidden(c, "not_channel_member", "Not a member of this channel")
	case errors.Is(err, service.ErrInvalidPeer):
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	case err != nil:
		return httpx.Internal(c, "fetch_messages_failed")
	}
	return c.JSON(fiber.Map{"messages": messages})
}
