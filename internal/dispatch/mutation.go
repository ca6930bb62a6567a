package dispatch

import (
	"strings"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/noteduco342/lanchat-backend/internal/validation"
)

// EditInput is a chat:edit request.
type EditInput struct {
	MessageID uint
	Content   string
}

// Revoke marks a message as revoked and tells everyone who could see it.
func (e *Engine) Revoke(actor *models.User, origin presence.Conn, messageID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, err := e.loadMessage(messageID)
	if err != nil {
		return e.fail(origin, err)
	}
	if err := e.policy.CanRevoke(actor, msg, e.now()); err != nil {
		return e.fail(origin, err)
	}

	if err := e.messages.MarkRevoked(msg.ID); err != nil {
		e.log.Error("failed to revoke message", "message_id", msg.ID, "error", err)
		return e.fail(origin, persistenceError(err))
	}
	scope := models.ScopeOf(msg)
	e.invalidate(scope)

	event := RevokedEvent{
		MessageID:  msg.ID,
		RevokedBy:  actor.ID,
		Scope:      string(scope.Kind),
		FromUserID: msg.SenderID,
		ToUserID:   msg.ToUserID,
	}
	if scope.Kind == models.ScopeChannel {
		event.ChannelID = scope.ChannelID
	}
	e.broadcastAbout(msg, EventChatRevoked, event)
	return nil
}

// Edit replaces the content of a text message and stamps the edit time.
func (e *Engine) Edit(actor *models.User, origin presence.Conn, in EditInput) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := strings.TrimSpace(in.Content)
	if in.MessageID == 0 || content == "" {
		return e.fail(origin, ErrInvalidEdit)
	}
	if validation.ExceedsLength(content, e.maxLength) {
		return e.fail(origin, ErrMessageTooLong)
	}

	msg, err := e.loadMessage(in.MessageID)
	if err != nil {
		return e.fail(origin, err)
	}
	now := e.now()
	if err := e.policy.CanEdit(actor, msg, now); err != nil {
		return e.fail(origin, err)
	}

	if err := e.messages.UpdateContent(msg.ID, content, now); err != nil {
		e.log.Error("failed to edit message", "message_id", msg.ID, "error", err)
		return e.fail(origin, persistenceError(err))
	}
	e.invalidate(models.ScopeOf(msg))

	e.broadcastAbout(msg, EventChatEdited, EditedEvent{
		MessageID: msg.ID,
		Content:   content,
		EditedAt:  now,
		EditedBy:  actor.ID,
	})
	return nil
}

func (e *Engine) loadMessage(id uint) (*models.Message, error) {
	if id == 0 {
		return nil, ErrMessageNotFound
	}
	msg, err := e.messages.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, persistenceError(err)
	}
	return msg, nil
}

// broadcastAbout sends event to the audience of msg.
func (e *Engine) broadcastAbout(msg *models.Message, event string, payload interface{}) {
	recipients, err := e.recipientsOf(msg)
	if err != nil {
		e.log.Error("failed to resolve recipients", "message_id", msg.ID, "event", event, "error", err)
		return
	}
	e.dir.EmitTo(recipients, event, payload)
}
