package dispatch

import (
	"strings"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/noteduco342/lanchat-backend/internal/validation"
	"github.com/samber/lo"
)

// SubmitInput is a chat:message request. To is 0 for the group or a
// channel, otherwise the private peer.
type SubmitInput struct {
	To               int64
	ChannelID        uint
	Type             models.MessageType
	Content          string
	ReplyToMessageID uint
}

// TypingInput is a chat:typing notification.
type TypingInput struct {
	To        int64
	ChannelID uint
}

// Submit validates, persists and fans out one message. Nothing is delivered
// unless the message was stored.
func (e *Engine) Submit(sender *models.User, origin presence.Conn, in SubmitInput) (*models.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	scope, err := e.validateSubmit(sender, in)
	if err != nil {
		return nil, e.fail(origin, err)
	}

	msg := &models.Message{
		SenderID: sender.ID,
		Type:     in.Type,
		Content:  in.Content,
	}
	switch scope.Kind {
	case models.ScopeChannel:
		channelID := in.ChannelID
		msg.ChannelID = &channelID
	case models.ScopePrivate:
		msg.ToUserID = uint(in.To)
	}
	if in.ReplyToMessageID != 0 {
		replyTo := in.ReplyToMessageID
		msg.ReplyToMessageID = &replyTo
	}

	if err := e.messages.Create(msg); err != nil {
		e.log.Error("failed to persist message", "user_id", sender.ID, "scope", scope.Key(), "error", err)
		return nil, e.fail(origin, persistenceError(err))
	}
	e.invalidate(scope)

	if err := e.fanOutMessage(msg, scope, origin); err != nil {
		e.log.Error("failed to resolve recipients", "message_id", msg.ID, "error", err)
	}
	e.metrics.dispatched(string(scope.Kind))

	if msg.Type == models.TextMessage && strings.Contains(msg.Content, "@") {
		stored := *msg
		senderNickname := sender.Nickname
		e.async(func() { e.scanMentions(&stored, senderNickname) })
	}
	return msg, nil
}

// validateSubmit applies the acceptance rules in order and returns the
// conversation the message will belong to.
func (e *Engine) validateSubmit(sender *models.User, in SubmitInput) (models.Scope, error) {
	if !in.Type.Valid() || strings.TrimSpace(in.Content) == "" {
		return models.Scope{}, ErrInvalidMessage
	}
	if in.Type == models.TextMessage && validation.ExceedsLength(in.Content, e.maxLength) {
		return models.Scope{}, ErrMessageTooLong
	}
	if in.To < 0 {
		return models.Scope{}, ErrInvalidTarget
	}
	if in.Type == models.FileMessage {
		if _, err := validation.ParseFilePayload(in.Content); err != nil {
			return models.Scope{}, ErrInvalidFilePayload
		}
	}
	if in.ChannelID != 0 && in.To != 0 {
		return models.Scope{}, ErrChannelTargetConflict
	}
	if in.ChannelID != 0 {
		member, err := e.channels.IsMember(in.ChannelID, sender.ID)
		if err != nil {
			return models.Scope{}, persistenceError(err)
		}
		if !member {
			return models.Scope{}, ErrNotChannelMember
		}
	}
	if in.To > 0 && uint(in.To) == sender.ID {
		return models.Scope{}, ErrSelfPrivateMessage
	}

	var scope models.Scope
	switch {
	case in.ChannelID != 0:
		scope = models.ChannelScope(in.ChannelID)
	case in.To == 0:
		scope = models.GroupScope()
	default:
		scope = models.PrivateScope(sender.ID, uint(in.To))
	}

	if in.ReplyToMessageID != 0 {
		quoted, err := e.messages.FindByID(in.ReplyToMessageID)
		if err != nil {
			if isNotFound(err) {
				return models.Scope{}, ErrInvalidReply
			}
			return models.Scope{}, persistenceError(err)
		}
		if quoted.IsRevoked || !scope.Contains(quoted) {
			return models.Scope{}, ErrInvalidReply
		}
	}
	return scope, nil
}

// fanOutMessage delivers the stored record. Private messages reach the
// originating connection directly so the sender's echo never depends on the
// directory entry.
func (e *Engine) fanOutMessage(msg *models.Message, scope models.Scope, origin presence.Conn) error {
	payload := msg.ToResponse()
	switch scope.Kind {
	case models.ScopeGroup:
		e.dir.EmitAll(EventChatMessage, payload, "")
	case models.ScopePrivate:
		if origin != nil {
			_ = origin.Send(EventChatMessage, payload)
			e.dir.EmitTo([]uint{msg.ToUserID}, EventChatMessage, payload)
		} else {
			e.dir.EmitTo([]uint{msg.SenderID, msg.ToUserID}, EventChatMessage, payload)
		}
	case models.ScopeChannel:
		members, err := e.channels.GetMemberIDs(scope.ChannelID)
		if err != nil {
			return err
		}
		e.dir.EmitTo(members, EventChatMessage, payload)
	}
	return nil
}

// Typing relays a typing notification. It is never persisted and invalid
// targets are dropped silently.
func (e *Engine) Typing(sender *models.User, origin presence.Conn, in TypingInput) {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload := TypingEvent{From: sender.ID, FromNickname: sender.Nickname}

	switch {
	case in.ChannelID != 0:
		member, err := e.channels.IsMember(in.ChannelID, sender.ID)
		if err != nil || !member {
			return
		}
		members, err := e.channels.GetMemberIDs(in.ChannelID)
		if err != nil {
			return
		}
		payload.ChannelID = in.ChannelID
		e.dir.EmitTo(lo.Without(members, sender.ID), EventChatTyping, payload)
	case in.To == 0:
		except := ""
		if origin != nil {
			except = origin.ID()
		}
		e.dir.EmitAll(EventChatTyping, payload, except)
	case in.To > 0 && uint(in.To) != sender.ID:
		e.dir.EmitTo([]uint{uint(in.To)}, EventChatTyping, payload)
	}
}
