package repository

import (
	"github.com/noteduco342/lanchat-backend/internal/models"
	"gorm.io/gorm"
)

type ReadCursorRepository struct {
	db *gorm.DB
}

func NewReadCursorRepository(db *gorm.DB) *ReadCursorRepository {
	return &ReadCursorRepository{db: db}
}

// UpsertMonotonic never lowers a stored cursor.
func (r *ReadCursorRepository) UpsertMonotonic(userID uint, conversationKey string, lastReadMessageID uint) error {
	return r.db.Exec(`
		INSERT INTO read_cursors (user_id, conversation_key, last_read_message_id, updated_at)
		VALUES (?, ?, ?, NOW())
		ON CONFLICT (user_id, conversation_key) DO UPDATE
		SET last_read_message_id = GREATEST(read_cursors.last_read_message_id, EXCLUDED.last_read_message_id),
			updated_at = NOW()
	`, userID, conversationKey, lastReadMessageID).Error
}

func (r *ReadCursorRepository) Get(userID uint, conversationKey string) (*models.ReadCursor, error) {
	var cursor models.ReadCursor
	err := r.db.Where("user_id = ? AND conversation_key = ?", userID, conversationKey).First(&cursor).Error
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}
