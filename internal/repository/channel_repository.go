package repository

import (
	"github.com/noteduco342/lanchat-backend/internal/models"
	"gorm.io/gorm"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create inserts the channel and its initial members in one transaction.
func (r *ChannelRepository) Create(channel *models.Channel, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		members := make([]models.ChannelMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, models.ChannelMember{ChannelID: channel.ID, UserID: id, AddedBy: channel.CreatedBy})
		}
		return tx.Create(&members).Error
	})
}

func (r *ChannelRepository) FindByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepository) GetMemberIDs(channelID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ?", channelID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ChannelRepository) GetMembers(channelID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN channel_members ON channel_members.user_id = users.id").
		Where("channel_members.channel_id = ?", channelID).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

func (r *ChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChannelRepository) ReplaceMembers(channelID uint, userIDs []uint, addedBy uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channelID).Delete(&models.ChannelMember{}).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		members := make([]models.ChannelMember, 0, len(userIDs))
		for _, id := range userIDs {
			members = append(members, models.ChannelMember{ChannelID: channelID, UserID: id, AddedBy: addedBy})
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		return tx.Model(&models.Channel{}).Where("id = ?", channelID).
			Update("updated_at", gorm.Expr("NOW()")).Error
	})
}

func (r *ChannelRepository) GetUserChannels(userID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Joins("JOIN channel_members ON channel_members.channel_id = channels.id").
		Where("channel_members.user_id = ?", userID).
		Order("channels.id ASC").
		Find(&channels).Error
	return channels, err
}
