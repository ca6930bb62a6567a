package dispatch

import (
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
)

// ReadInput is a chat:read request naming the conversation the reader has caught up on.
type ReadInput struct {
	To        int64
	ChannelID uint
}

// MarkRead moves the reader's cursor to the newest message in the
// conversation and reports the resulting position. Cursors never move back.
func (e *Engine) MarkRead(reader *models.User, origin presence.Conn, in ReadInput) (uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.To < 0 {
		return 0, e.fail(origin, ErrInvalidTarget)
	}
	if in.ChannelID != 0 && in.To != 0 {
		return 0, e.fail(origin, ErrChannelTargetConflict)
	}

	var scope models.Scope
	switch {
	case in.ChannelID != 0:
		member, err := e.channels.IsMember(in.ChannelID, reader.ID)
		if err != nil {
			return 0, e.fail(origin, persistenceError(err))
		}
		if !member {
			return 0, e.fail(origin, ErrNotChannelMember)
		}
		scope = models.ChannelScope(in.ChannelID)
	case in.To == 0:
		scope = models.GroupScope()
	default:
		if uint(in.To) == reader.ID {
			return 0, e.fail(origin, ErrInvalidTarget)
		}
		scope = models.PrivateScope(reader.ID, uint(in.To))
	}

	maxID, err := e.messages.MaxIDIn(scope)
	if err != nil {
		e.log.Error("failed to find newest message", "scope", scope.Key(), "error", err)
		return 0, e.fail(origin, persistenceError(err))
	}
	if err := e.cursors.UpsertMonotonic(reader.ID, scope.Key(), maxID); err != nil {
		e.log.Error("failed to store read cursor", "user_id", reader.ID, "scope", scope.Key(), "error", err)
		return 0, e.fail(origin, persistenceError(err))
	}

	event := ReadEvent{
		Scope:             string(scope.Kind),
		ReaderID:          reader.ID,
		LastReadMessageID: maxID,
	}
	switch scope.Kind {
	case models.ScopeChannel:
		event.ChannelID = scope.ChannelID
		members, err := e.channels.GetMemberIDs(scope.ChannelID)
		if err != nil {
			e.log.Error("failed to resolve channel members", "channel_id", scope.ChannelID, "error", err)
			break
		}
		e.dir.EmitTo(members, EventChatRead, event)
	case models.ScopePrivate:
		event.PeerID = scope.PeerID
		e.dir.EmitTo([]uint{reader.ID, scope.PeerID}, EventChatRead, event)
	default:
		e.dir.EmitAll(EventChatRead, event, "")
	}
	return maxID, nil
}
