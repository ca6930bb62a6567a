package models

import (
	"time"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	FileMessage  MessageType = "file"
)

// Valid reports whether t is one of the accepted message kinds.
func (t MessageType) Valid() bool {
	switch t {
	case TextMessage, ImageMessage, FileMessage:
		return true
	}
	return false
}

// Message is a persisted chat event. ToUserID is 0 for group and channel
// messages; ChannelID is nil for group and private messages.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	SenderID  uint  `gorm:"not null;index" json:"from_user_id"`
	Sender    User  `gorm:"foreignKey:SenderID" json:"-"`
	ToUserID  uint  `gorm:"not null;default:0;index" json:"to_user_id"`
	ChannelID *uint `gorm:"index" json:"channel_id"`

	Type             MessageType `gorm:"type:varchar(10);not null;default:'text'" json:"type"`
	Content          string      `gorm:"type:text;not null" json:"content"`
	ReplyToMessageID *uint       `json:"reply_to_message_id"`

	IsRevoked bool       `gorm:"not null;default:false" json:"is_revoked"`
	EditedAt  *time.Time `json:"edited_at"`
}

// MessageResponse is the payload of chat:message and of history queries.
type MessageResponse struct {
	ID               uint        `json:"id"`
	FromUserID       uint        `json:"from_user_id"`
	ToUserID         uint        `json:"to_user_id"`
	ChannelID        *uint       `json:"channel_id"`
	Type             MessageType `json:"type"`
	Content          string      `json:"content"`
	ReplyToMessageID *uint       `json:"reply_to_message_id"`
	IsRevoked        bool        `json:"is_revoked"`
	EditedAt         *time.Time  `json:"edited_at"`
	CreatedAt        time.Time   `json:"created_at"`
	FromUsername     string      `json:"from_username"`
	FromNickname     string      `json:"from_nickname"`
	FromAvatar       string      `json:"from_avatar"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:               m.ID,
		FromUserID:       m.SenderID,
		ToUserID:         m.ToUserID,
		ChannelID:        m.ChannelID,
		Type:             m.Type,
		Content:          m.Content,
		ReplyToMessageID: m.ReplyToMessageID,
		IsRevoked:        m.IsRevoked,
		EditedAt:         m.EditedAt,
		CreatedAt:        m.CreatedAt,
		FromUsername:     m.Sender.Username,
		FromNickname:     m.Sender.Nickname,
		FromAvatar:       m.Sender.Avatar,
	}
}
