package dispatch

import (
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
)

const (
	RevokeWindow = 2 * time.Minute
	EditWindow   = 2 * time.Minute
)

// MutationPolicy decides who may revoke or edit a stored message. Admins may
// act on any message at any time; owners only within the window.
type MutationPolicy struct {
	RevokeWindow time.Duration
	EditWindow   time.Duration
}

func DefaultPolicy() MutationPolicy {
	return MutationPolicy{RevokeWindow: RevokeWindow, EditWindow: EditWindow}
}

func (p MutationPolicy) CanRevoke(actor *models.User, msg *models.Message, now time.Time) error {
	return authorize(actor, msg, now, p.RevokeWindow)
}

// CanEdit additionally requires a live text message.
func (p MutationPolicy) CanEdit(actor *models.User, msg *models.Message, now time.Time) error {
	if msg.Type != models.TextMessage || msg.IsRevoked {
		return ErrNotEditable
	}
	return authorize(actor, msg, now, p.EditWindow)
}

func authorize(actor *models.User, msg *models.Message, now time.Time, window time.Duration) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor == nil || actor.ID != msg.SenderID {
		return ErrForbidden
	}
	if now.Sub(msg.CreatedAt) >= window {
		return ErrWindowExpired
	}
	return nil
}
