package dispatch

import (
	"time"
)

// Outbound event names.
const (
	EventUserList       = "user:list"
	EventUserJoined     = "user:joined"
	EventUserLeft       = "user:left"
	EventProfileUpdated = "user:profile-updated"

	EventChatMessage   = "chat:message"
	EventChatTyping    = "chat:typing"
	EventChatRevoked   = "chat:revoked"
	EventChatEdited    = "chat:edited"
	EventChatRead      = "chat:read"
	EventChatMentioned = "chat:mentioned"
	EventChatError     = "chat:error"

	EventChannelUpdated      = "channel:updated"
	EventChannelAnnouncement = "channel:announcement"
)

type UserJoinedEvent struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type UserLeftEvent struct {
	ID uint `json:"id"`
}

type ProfileUpdatedEvent struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type TypingEvent struct {
	From         uint   `json:"from"`
	FromNickname string `json:"fromNickname"`
	ChannelID    uint   `json:"channelId,omitempty"`
}

type RevokedEvent struct {
	MessageID  uint   `json:"messageId"`
	RevokedBy  uint   `json:"revokedBy"`
	Scope      string `json:"scope"`
	ChannelID  uint   `json:"channelId,omitempty"`
	FromUserID uint   `json:"fromUserId"`
	ToUserID   uint   `json:"toUserId"`
}

type EditedEvent struct {
	MessageID uint      `json:"messageId"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"editedAt"`
	EditedBy  uint      `json:"editedBy"`
}

type ReadEvent struct {
	Scope             string `json:"scope"`
	ChannelID         uint   `json:"channelId,omitempty"`
	PeerID            uint   `json:"peerId,omitempty"`
	ReaderID          uint   `json:"readerId"`
	LastReadMessageID uint   `json:"lastReadMessageId"`
}

type MentionedEvent struct {
	MessageID       uint   `json:"messageId"`
	From            string `json:"from"`
	ConversationKey string `json:"conversationKey"`
}

type ErrorEvent struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ChannelUpdatedEvent struct {
	ChannelID uint `json:"channelId"`
}

type AnnouncementEvent struct {
	ChannelID uint      `json:"channelId"`
	Content   string    `json:"content"`
	From      string    `json:"from"`
	CreatedAt time.Time `json:"createdAt"`
}
