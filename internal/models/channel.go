package models

import (
	"time"
)

type Channel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"size:30;uniqueIndex;not null" json:"name"`
	CreatedBy uint   `gorm:"not null" json:"created_by"`

	Members []ChannelMember `gorm:"foreignKey:ChannelID" json:"members,omitempty"`
}

// ChannelMember is the ground truth for channel authorization and fan-out.
type ChannelMember struct {
	ChannelID uint      `gorm:"primaryKey" json:"channel_id"`
	UserID    uint      `gorm:"primaryKey;index" json:"user_id"`
	AddedBy   uint      `json:"added_by"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Channel Channel `gorm:"foreignKey:ChannelID" json:"-"`
}
