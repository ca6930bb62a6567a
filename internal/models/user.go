package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

// User is the identity record. The realtime core only reads it.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Nickname     string     `gorm:"not null" json:"nickname"`
	Avatar       string     `gorm:"default:''" json:"avatar"`
	Role         UserRole   `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(10);not null;default:'active'" json:"status"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsDisabled() bool {
	return u != nil && u.Status == StatusDisabled
}

type UserResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Nickname string     `json:"nickname"`
	Avatar   string     `json:"avatar"`
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		Role:     u.Role,
		Status:   u.Status,
	}
}
