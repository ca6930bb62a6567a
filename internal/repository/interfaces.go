package repository

import (
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	// FindByIDs returns the users that exist among ids, in id order.
	FindByIDs(ids []uint) ([]models.User, error)
	// ListMentionable returns id and nickname of every registered user.
	ListMentionable() ([]models.User, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	MarkRevoked(id uint) error
	UpdateContent(id uint, content string, editedAt time.Time) error
	// MaxIDIn returns the highest message id in the conversation, 0 if empty.
	MaxIDIn(scope models.Scope) (uint, error)
	FindInScope(scope models.Scope, limit, offset int) ([]models.Message, error)
}

// ChannelRepositoryInterface defines the contract for channel membership lookups.
// Lookups are never cached so that external membership changes apply immediately.
type ChannelRepositoryInterface interface {
	Create(channel *models.Channel, memberIDs []uint) error
	FindByID(id uint) (*models.Channel, error)
	GetMemberIDs(channelID uint) ([]uint, error)
	GetMembers(channelID uint) ([]models.User, error)
	IsMember(channelID, userID uint) (bool, error)
	ReplaceMembers(channelID uint, userIDs []uint, addedBy uint) error
	GetUserChannels(userID uint) ([]models.Channel, error)
}

// ReadCursorRepositoryInterface defines the contract for read cursor operations
type ReadCursorRepositoryInterface interface {
	UpsertMonotonic(userID uint, conversationKey string, lastReadMessageID uint) error
	Get(userID uint, conversationKey string) (*models.ReadCursor, error)
}
