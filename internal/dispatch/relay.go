package dispatch

import (
	"strings"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/samber/lo"
)

// ProfileUpdated refreshes the presence entry of user and tells everyone
// about the new display fields. Cached history embeds sender display fields,
// so every cached page is dropped.
func (e *Engine) ProfileUpdated(user *models.User) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.invalidateAll()

	nickname, avatar := user.Nickname, user.Avatar
	e.dir.UpdateProfile(user.ID, presence.ProfilePatch{Nickname: &nickname, Avatar: &avatar})
	e.dir.EmitAll(EventProfileUpdated, ProfileUpdatedEvent{
		ID:       user.ID,
		Nickname: nickname,
		Avatar:   avatar,
	}, "")
}

// ChannelUpdated tells the affected users to refresh a channel. Callers pass
// members from before and after a change so removed users hear about it too.
func (e *Engine) ChannelUpdated(channelID uint, userIDs ...uint) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.dir.EmitTo(lo.Uniq(userIDs), EventChannelUpdated, ChannelUpdatedEvent{ChannelID: channelID})
}

// Announce pushes an announcement to the current members of a channel.
// Announcements are not stored.
func (e *Engine) Announce(from *models.User, channelID uint, content string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" {
		return 0, e.reject(ErrInvalidMessage)
	}
	members, err := e.channels.GetMemberIDs(channelID)
	if err != nil {
		return 0, e.reject(persistenceError(err))
	}

	display := from.Nickname
	if display == "" {
		display = from.Username
	}
	return e.dir.EmitTo(members, EventChannelAnnouncement, AnnouncementEvent{
		ChannelID: channelID,
		Content:   content,
		From:      display,
		CreatedAt: e.now(),
	}), nil
}
