package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/noteduco342/lanchat-backend/internal/models"
)

// MemoryHistoryCache is an in-memory history page cache with the same
// generation rules as the Redis one: invalidation bumps a counter, and a page
// is only stored if the counter has not moved since the caller read it.
type MemoryHistoryCache struct {
	mu      sync.Mutex
	pages   map[string][]models.MessageResponse
	gens    map[string]int64
	allGen  int64
	gets    int
	sets    int
	skipped int
}

func NewMemoryHistoryCache() *MemoryHistoryCache {
	return &MemoryHistoryCache{
		pages: make(map[string][]models.MessageResponse),
		gens:  make(map[string]int64),
	}
}

func conversationID(scope models.Scope) string {
	a, b := scope.UserID, scope.PeerID
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s/%d/%d/%d", scope.Kind, scope.ChannelID, a, b)
}

func (c *MemoryHistoryCache) GetPage(scope models.Scope, limit int) ([]models.MessageResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	page, ok := c.pages[fmt.Sprintf("%s/%d", conversationID(scope), limit)]
	return page, ok
}

func (c *MemoryHistoryCache) Generation(scope models.Scope) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[conversationID(scope)] + c.allGen, true
}

func (c *MemoryHistoryCache) SetPage(scope models.Scope, limit int, gen int64, page []models.MessageResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[conversationID(scope)]+c.allGen != gen {
		c.skipped++
		return nil
	}
	c.sets++
	c.pages[fmt.Sprintf("%s/%d", conversationID(scope), limit)] = page
	return nil
}

func (c *MemoryHistoryCache) InvalidateScope(scope models.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := conversationID(scope)
	c.gens[id]++
	for key := range c.pages {
		if strings.HasPrefix(key, id+"/") {
			delete(c.pages, key)
		}
	}
	return nil
}

func (c *MemoryHistoryCache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allGen++
	c.pages = make(map[string][]models.MessageResponse)
	return nil
}

// Stats returns how many reads, stored writes and fenced-off writes happened.
func (c *MemoryHistoryCache) Stats() (gets, sets, skipped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.sets, c.skipped
}
