package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// HistoryTTL bounds how long a first page may be served after a missed invalidation.
const HistoryTTL = 2 * time.Minute

// MessageCache stores first pages of conversation history, msgpack encoded.
type MessageCache struct {
	redis *RedisCache
	ttl   time.Duration
}

func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis, ttl: HistoryTTL}
}

// historyKey identifies a conversation independently of who is looking at it,
// so both sides of a private pair share one entry.
func historyKey(scope models.Scope) string {
	switch scope.Kind {
	case models.ScopeChannel:
		return fmt.Sprintf("history:channel:%d", scope.ChannelID)
	case models.ScopePrivate:
		a, b := scope.UserID, scope.PeerID
		if a > b {
			a, b = b, a
		}
		return fmt.Sprintf("history:private:%d:%d", a, b)
	default:
		return "history:group"
	}
}

func pageKey(scope models.Scope, limit int) string {
	return fmt.Sprintf("%s:%d", historyKey(scope), limit)
}

// allHistoryGenKey is bumped when every conversation goes stale at once.
// Generation keys sit outside the history: namespace so that page deletes
// never reset them.
const allHistoryGenKey = "gen:history"

func genKeys(scope models.Scope) []string {
	return []string{"gen:" + historyKey(scope), allHistoryGenKey}
}

// Generation snapshots the invalidation counters of the conversation. Take it
// before loading a page and hand it to SetPage. ok is false when Redis cannot
// answer, in which case the page should not be cached.
func (mc *MessageCache) Generation(scope models.Scope) (gen int64, ok bool) {
	if mc == nil || mc.redis == nil {
		return 0, false
	}
	gen, err := mc.redis.SumCounters(genKeys(scope)...)
	if err != nil {
		return 0, false
	}
	return gen, true
}

// GetPage returns the cached first page of the conversation for this limit.
func (mc *MessageCache) GetPage(scope models.Scope, limit int) ([]models.MessageResponse, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(pageKey(scope, limit))
	if err != nil || data == nil {
		return nil, false
	}

	var page []models.MessageResponse
	if err := msgpack.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return page, true
}

// SetPage stores a page loaded under gen. It silently skips the write when
// the conversation was invalidated since gen was taken.
func (mc *MessageCache) SetPage(scope models.Scope, limit int, gen int64, page []models.MessageResponse) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(page)
	if err != nil {
		return err
	}
	err = mc.redis.SetIfCountersSum(genKeys(scope), gen, pageKey(scope, limit), data, mc.ttl)
	if errors.Is(err, ErrCountersMoved) {
		return nil
	}
	return err
}

// InvalidateScope drops every cached page of the conversation and fences off
// pages that are still being loaded.
func (mc *MessageCache) InvalidateScope(scope models.Scope) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	incrErr := mc.redis.Incr(genKeys(scope)[0])
	return errors.Join(incrErr, mc.redis.DeletePattern(historyKey(scope)+":*"))
}

// InvalidateAll drops every cached page, e.g. after a sender's display fields
// changed.
func (mc *MessageCache) InvalidateAll() error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	incrErr := mc.redis.Incr(allHistoryGenKey)
	return errors.Join(incrErr, mc.redis.DeletePattern("history:*"))
}
