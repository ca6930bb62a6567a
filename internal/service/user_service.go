package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/repository"
	"github.com/noteduco342/lanchat-backend/internal/validation"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidNickname = errors.New("nickname must be 1 to 30 characters")
)

const maxAvatarLength = 512

// ProfileRelay pushes a changed profile to live connections.
type ProfileRelay interface {
	ProfileUpdated(user *models.User)
}

type UserService struct {
	userRepo repository.UserRepositoryInterface
	relay    ProfileRelay
}

func NewUserService(userRepo repository.UserRepositoryInterface, relay ProfileRelay) *UserService {
	return &UserService{userRepo: userRepo, relay: relay}
}

// UpdateProfileInput fields are optional; nil leaves the value unchanged.
type UpdateProfileInput struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		if !validation.ValidateNickname(*input.Nickname) {
			return nil, ErrInvalidNickname
		}
		user.Nickname = strings.TrimSpace(*input.Nickname)
	}
	if input.Avatar != nil {
		user.Avatar = validation.TrimAndLimit(*input.Avatar, maxAvatarLength)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.relay != nil {
		s.relay.ProfileUpdated(user)
	}
	return user, nil
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
