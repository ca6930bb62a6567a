package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/repository"
	"github.com/samber/lo"
)

const MaxChannelNameLength = 30

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrInvalidChannelName = errors.New("channel name must be 1 to 30 characters")
	ErrChannelNameTaken   = errors.New("channel name already exists")
	ErrUnknownMember      = errors.New("member list contains unknown users")
)

// ChannelRelay delivers channel notifications to live connections.
type ChannelRelay interface {
	ChannelUpdated(channelID uint, userIDs ...uint) int
	Announce(from *models.User, channelID uint, content string) (int, error)
}

type ChannelService struct {
	channelRepo repository.ChannelRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	relay       ChannelRelay
}

func NewChannelService(channelRepo repository.ChannelRepositoryInterface, userRepo repository.UserRepositoryInterface, relay ChannelRelay) *ChannelService {
	return &ChannelService{channelRepo: channelRepo, userRepo: userRepo, relay: relay}
}

type CreateChannelInput struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"memberIds"`
}

type ReplaceMembersInput struct {
	MemberIDs []uint `json:"memberIds"`
}

type AnnounceInput struct {
	Content string `json:"content"`
}

// ChannelDetail is a channel together with its current members.
type ChannelDetail struct {
	models.Channel
	Members []models.UserResponse `json:"members"`
}

func (s *ChannelService) ListForUser(userID uint) ([]models.Channel, error) {
	channels, err := s.channelRepo.GetUserChannels(userID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	return channels, nil
}

// Create makes a channel; the creating admin is always a member.
func (s *ChannelService) Create(actor *models.User, input CreateChannelInput) (*ChannelDetail, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxChannelNameLength {
		return nil, ErrInvalidChannelName
	}
	memberIDs, err := s.resolveMembers(actor, input.MemberIDs)
	if err != nil {
		return nil, err
	}

	channel := &models.Channel{Name: name, CreatedBy: actor.ID}
	if err := s.channelRepo.Create(channel, memberIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChannelNameTaken
		}
		return nil, fmt.Errorf("create channel: %w", err)
	}

	s.notify(channel.ID, memberIDs)
	return s.detail(channel)
}

// ReplaceMembers sets the member list and notifies both the previous and the
// new members, so removed users drop the channel too.
func (s *ChannelService) ReplaceMembers(actor *models.User, channelID uint, input ReplaceMembersInput) (*ChannelDetail, error) {
	channel, err := s.findChannel(channelID)
	if err != nil {
		return nil, err
	}
	memberIDs, err := s.resolveMembers(actor, input.MemberIDs)
	if err != nil {
		return nil, err
	}

	before, err := s.channelRepo.GetMemberIDs(channelID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if err := s.channelRepo.ReplaceMembers(channelID, memberIDs, actor.ID); err != nil {
		return nil, fmt.Errorf("replace members: %w", err)
	}

	s.notify(channelID, append(before, memberIDs...))
	return s.detail(channel)
}

// Announce returns how many live members received the announcement.
func (s *ChannelService) Announce(actor *models.User, channelID uint, input AnnounceInput) (int, error) {
	if _, err := s.findChannel(channelID); err != nil {
		return 0, err
	}
	if s.relay == nil {
		return 0, nil
	}
	return s.relay.Announce(actor, channelID, input.Content)
}

func (s *ChannelService) findChannel(channelID uint) (*models.Channel, error) {
	channel, err := s.channelRepo.FindByID(channelID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return channel, nil
}

func (s *ChannelService) resolveMembers(actor *models.User, requested []uint) ([]uint, error) {
	ids := lo.Uniq(append(lo.Filter(requested, func(id uint, _ int) bool { return id > 0 }), actor.ID))
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("look up members: %w", err)
	}
	if len(users) != len(ids) {
		return nil, ErrUnknownMember
	}
	return lo.Map(users, func(u models.User, _ int) uint { return u.ID }), nil
}

func (s *ChannelService) detail(channel *models.Channel) (*ChannelDetail, error) {
	members, err := s.channelRepo.GetMembers(channel.ID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return &ChannelDetail{
		Channel: *channel,
		Members: lo.Map(members, func(u models.User, _ int) models.UserResponse { return u.ToResponse() }),
	}, nil
}

func (s *ChannelService) notify(channelID uint, userIDs []uint) {
	if s.relay != nil {
		s.relay.ChannelUpdated(channelID, userIDs...)
	}
}
