package ws

import (
	"github.com/go-playground/validator/v10"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/models"
)

var validate = validator.New()

const (
	MsgChat   = "chat:message"
	MsgTyping = "chat:typing"
	MsgRevoke = "chat:revoke"
	MsgEdit   = "chat:edit"
	MsgRead   = "chat:read"
)

// MessageChat submits a new message. To is 0 for the group or a channel.
type MessageChat struct {
	To               int64  `json:"to"`
	ChannelID        uint   `json:"channelId"`
	Type             string `json:"type" validate:"required"`
	Content          string `json:"content" validate:"required"`
	ReplyToMessageID uint   `json:"replyToMessageId"`
}

func (msg *MessageChat) GetType() string {
	return MsgChat
}

func (msg *MessageChat) Process(ctx *MessageContext) (AckPayload, error) {
	if err := validate.Struct(msg); err != nil {
		return AckPayload{}, dispatch.ErrInvalidMessage
	}

	stored, err := ctx.Engine.Submit(ctx.User, ctx.Conn, dispatch.SubmitInput{
		To:               msg.To,
		ChannelID:        msg.ChannelID,
		Type:             models.MessageType(msg.Type),
		Content:          msg.Content,
		ReplyToMessageID: msg.ReplyToMessageID,
	})
	if err != nil {
		return AckPayload{}, err
	}
	resp := stored.ToResponse()
	return AckPayload{OK: true, ID: stored.ID, Message: &resp}, nil
}

// MessageTyping is a transient typing notification
type MessageTyping struct {
	To        int64 `json:"to"`
	ChannelID uint  `json:"channelId"`
}

func (msg *MessageTyping) GetType() string {
	return MsgTyping
}

func (msg *MessageTyping) Process(ctx *MessageContext) (AckPayload, error) {
	ctx.Engine.Typing(ctx.User, ctx.Conn, dispatch.TypingInput{To: msg.To, ChannelID: msg.ChannelID})
	return AckPayload{OK: true}, nil
}

// MessageRevoke withdraws a sent message
type MessageRevoke struct {
	MessageID uint `json:"messageId" validate:"required"`
}

func (msg *MessageRevoke) GetType() string {
	return MsgRevoke
}

func (msg *MessageRevoke) Process(ctx *MessageContext) (AckPayload, error) {
	if err := validate.Struct(msg); err != nil {
		return AckPayload{}, dispatch.ErrMessageNotFound
	}
	if err := ctx.Engine.Revoke(ctx.User, ctx.Conn, msg.MessageID); err != nil {
		return AckPayload{}, err
	}
	return AckPayload{OK: true}, nil
}

// MessageEdit replaces the content of a text message
type MessageEdit struct {
	MessageID uint   `json:"messageId" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

func (msg *MessageEdit) GetType() string {
	return MsgEdit
}

func (msg *MessageEdit) Process(ctx *MessageContext) (AckPayload, error) {
	if err := validate.Struct(msg); err != nil {
		return AckPayload{}, dispatch.ErrInvalidEdit
	}
	if err := ctx.Engine.Edit(ctx.User, ctx.Conn, dispatch.EditInput{MessageID: msg.MessageID, Content: msg.Content}); err != nil {
		return AckPayload{}, err
	}
	return AckPayload{OK: true}, nil
}

// MessageRead marks a conversation as read up to its newest message
type MessageRead struct {
	To        int64 `json:"to"`
	ChannelID uint  `json:"channelId"`
}

func (msg *MessageRead) GetType() string {
	return MsgRead
}

func (msg *MessageRead) Process(ctx *MessageContext) (AckPayload, error) {
	lastRead, err := ctx.Engine.MarkRead(ctx.User, ctx.Conn, dispatch.ReadInput{To: msg.To, ChannelID: msg.ChannelID})
	if err != nil {
		return AckPayload{}, err
	}
	return AckPayload{OK: true, LastReadMessageID: &lastRead}, nil
}
