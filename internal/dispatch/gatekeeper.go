package dispatch

import (
	"strings"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
)

// Authenticate validates a handshake token and loads the user it names.
// Disabled or deleted users are refused.
func (e *Engine) Authenticate(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, e.reject(ErrMissingToken)
	}

	userID, err := e.tokens.VerifyToken(token)
	if err != nil {
		return nil, e.reject(ErrInvalidToken)
	}

	user, err := e.users.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, e.reject(ErrUserUnavailable)
		}
		e.log.Error("handshake user lookup failed", "user_id", userID, "error", err)
		return nil, e.reject(persistenceError(err))
	}
	if user.IsDisabled() {
		return nil, e.reject(ErrUserUnavailable)
	}
	return user, nil
}

// Admit registers conn as the live connection of user, announces the arrival
// to everyone else and sends the newcomer the full presence snapshot.
// A previous connection of the same user is superseded but left open.
func (e *Engine) Admit(user *models.User, conn presence.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.dir.Register(presence.Entry{
		UserID:   user.ID,
		Conn:     conn,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	})
	if prev != nil && prev.Conn.ID() != conn.ID() {
		e.log.Info("connection superseded", "user_id", user.ID, "old_conn", prev.Conn.ID(), "new_conn", conn.ID())
	}
	e.log.Info("user connected", "user_id", user.ID, "conn", conn.ID(), "online", e.dir.Count())

	if e.mirror != nil {
		if err := e.mirror.SetUserOnline(user.ID); err != nil {
			e.log.Warn("presence mirror update failed", "user_id", user.ID, "error", err)
		}
	}
	e.metrics.setOnline(e.dir.Count())

	e.dir.EmitAll(EventUserJoined, UserJoinedEvent{
		ID:       user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}, conn.ID())

	if err := conn.Send(EventUserList, e.dir.Snapshot()); err != nil {
		e.log.Warn("failed to send presence snapshot", "user_id", user.ID, "error", err)
	}
}

// Leave drops the user's entry if it still belongs to connID and tells the
// remaining users. A stale connection closing after a reconnect is a no-op.
func (e *Engine) Leave(userID uint, connID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dir.Remove(userID, connID) {
		e.log.Debug("stale disconnect ignored", "user_id", userID, "conn", connID)
		return false
	}
	e.log.Info("user disconnected", "user_id", userID, "conn", connID, "online", e.dir.Count())

	if e.mirror != nil {
		if err := e.mirror.SetUserOffline(userID); err != nil {
			e.log.Warn("presence mirror update failed", "user_id", userID, "error", err)
		}
	}
	e.metrics.setOnline(e.dir.Count())

	e.dir.EmitAll(EventUserLeft, UserLeftEvent{ID: userID}, "")
	return true
}
