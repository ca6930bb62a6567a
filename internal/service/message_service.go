package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

var (
	ErrNotChannelMember = errors.New("not a member of this channel")
	ErrInvalidPeer      = errors.New("invalid conversation peer")
)

// HistoryCache holds first pages of conversations. A nil cache disables caching.
// Generation is read before a page is loaded; SetPage drops the page if the
// conversation was invalidated in between.
type HistoryCache interface {
	GetPage(scope models.Scope, limit int) ([]models.MessageResponse, bool)
	Generation(scope models.Scope) (int64, bool)
	SetPage(scope models.Scope, limit int, gen int64, page []models.MessageResponse) error
}

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	channelRepo repository.ChannelRepositoryInterface
	cache       HistoryCache
	log         *slog.Logger
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	channelRepo repository.ChannelRepositoryInterface,
	cache HistoryCache,
	logger *slog.Logger,
) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		cache:       cache,
		log:         logger,
	}
}

// HistoryQuery pages backwards from the newest message.
type HistoryQuery struct {
	Limit  int
	Offset int
}

func (q HistoryQuery) normalized() HistoryQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func (s *MessageService) GroupHistory(q HistoryQuery) ([]models.MessageResponse, error) {
	return s.history(models.GroupScope(), q)
}

func (s *MessageService) PrivateHistory(userID, peerID uint, q HistoryQuery) ([]models.MessageResponse, error) {
	if peerID == 0 || peerID == userID {
		return nil, ErrInvalidPeer
	}
	return s.history(models.PrivateScope(userID, peerID), q)
}

// ChannelHistory is only visible to current members.
func (s *MessageService) ChannelHistory(userID, channelID uint, q HistoryQuery) ([]models.MessageResponse, error) {
	ok, err := s.channelRepo.IsMember(channelID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return nil, ErrNotChannelMember
	}
	return s.history(models.ChannelScope(channelID), q)
}

func (s *MessageService) history(scope models.Scope, q HistoryQuery) ([]models.MessageResponse, error) {
	q = q.normalized()
	cacheable := q.Offset == 0 && s.cache != nil

	var gen int64
	if cacheable {
		if page, ok := s.cache.GetPage(scope, q.Limit); ok {
			return page, nil
		}
		gen, cacheable = s.cache.Generation(scope)
	}

	messages, err := s.messageRepo.FindInScope(scope, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	page := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		page = append(page, messages[i].ToResponse())
	}

	if cacheable {
		if err := s.cache.SetPage(scope, q.Limit, gen, page); err != nil {
			s.log.Warn("history cache write failed", "scope", scope.Key(), "error", err)
		}
	}
	return page, nil
}
