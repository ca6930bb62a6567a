package cache

const onlineUsersKey = "online:users"

// UserCache mirrors the set of connected user ids into Redis for other
// processes (health checks, admin tooling). The in-process presence
// directory stays authoritative; a nil UserCache is a no-op.
type UserCache struct {
	redis *RedisCache
}

func NewUserCache(redis *RedisCache) *UserCache {
	return &UserCache{redis: redis}
}

func (uc *UserCache) SetUserOnline(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.SetAdd(onlineUsersKey, userID)
}

func (uc *UserCache) SetUserOffline(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.SetRemove(onlineUsersKey, userID)
}

// Reset drops entries left behind by a previous process.
func (uc *UserCache) Reset() error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Delete(onlineUsersKey)
}

// GetOnlineCount returns the size of the mirrored online set.
func (uc *UserCache) GetOnlineCount() (int64, error) {
	if uc == nil || uc.redis == nil {
		return 0, nil
	}
	return uc.redis.SetCard(onlineUsersKey)
}
