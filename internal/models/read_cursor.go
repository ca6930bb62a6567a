package models

import (
	"time"
)

// ReadCursor tracks per-user read progress in one conversation.
// last_read_message_id is monotonic and represents the highest message ID the user has read.
type ReadCursor struct {
	UserID            uint      `gorm:"primaryKey" json:"user_id"`
	ConversationKey   string    `gorm:"primaryKey;size:40" json:"conversation_key"`
	LastReadMessageID uint      `gorm:"not null;default:0" json:"last_read_message_id"`
	UpdatedAt         time.Time `json:"updated_at"`
}
