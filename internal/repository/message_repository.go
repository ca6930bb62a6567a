package repository

import (
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message and reloads it with its sender, so the caller
// gets the assigned id and timestamp.
func (r *MessageRepository) Create(message *models.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}
	return r.db.Preload("Sender").First(message, message.ID).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.Preload("Sender").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) MarkRevoked(id uint) error {
	return r.db.Model(&models.Message{}).Where("id = ?", id).
		Update("is_revoked", true).Error
}

func (r *MessageRepository) UpdateContent(id uint, content string, editedAt time.Time) error {
	return r.db.Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		}).Error
}

func (r *MessageRepository) MaxIDIn(scope models.Scope) (uint, error) {
	var maxID uint
	err := inScope(r.db.Model(&models.Message{}), scope).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

// FindInScope pages backwards from the newest message and returns the page in
// ascending id order.
func (r *MessageRepository) FindInScope(scope models.Scope, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := inScope(r.db.Preload("Sender"), scope).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, err
}

func inScope(q *gorm.DB, scope models.Scope) *gorm.DB {
	switch scope.Kind {
	case models.ScopeChannel:
		return q.Where("channel_id = ?", scope.ChannelID)
	case models.ScopePrivate:
		return q.Where("channel_id IS NULL").
			Where("((sender_id = ? AND to_user_id = ?) OR (sender_id = ? AND to_user_id = ?))",
				scope.UserID, scope.PeerID, scope.PeerID, scope.UserID)
	default:
		return q.Where("channel_id IS NULL AND to_user_id = 0")
	}
}
