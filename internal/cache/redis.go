package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// ErrCountersMoved is returned by SetIfCountersSum when a watched counter
// changed before the write could happen.
var ErrCountersMoved = errors.New("cache: counters changed")

// RedisCache wraps the Redis client with the few operations the service needs.
// Every call runs under its own short timeout so a stalled Redis never blocks
// the realtime path for long.
type RedisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		timeout: opTimeout,
	}
}

func (c *RedisCache) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Get returns nil, nil when the key does not exist.
func (c *RedisCache) Get(key string) ([]byte, error) {
	ctx, cancel := c.op()
	defer cancel()
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.op()
	defer cancel()
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := c.op()
	defer cancel()
	return c.client.Del(ctx, keys...).Err()
}

// DeletePattern removes all keys matching a glob pattern
func (c *RedisCache) DeletePattern(pattern string) error {
	ctx, cancel := c.op()
	defer cancel()
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) SetAdd(key string, members ...interface{}) error {
	ctx, cancel := c.op()
	defer cancel()
	return c.client.SAdd(ctx, key, members...).Err()
}

func (c *RedisCache) SetRemove(key string, members ...interface{}) error {
	ctx, cancel := c.op()
	defer cancel()
	return c.client.SRem(ctx, key, members...).Err()
}

func (c *RedisCache) SetCard(key string) (int64, error) {
	ctx, cancel := c.op()
	defer cancel()
	return c.client.SCard(ctx, key).Result()
}

func (c *RedisCache) Incr(key string) error {
	ctx, cancel := c.op()
	defer cancel()
	return c.client.Incr(ctx, key).Err()
}

// SumCounters adds up integer counters. Missing keys count as zero.
func (c *RedisCache) SumCounters(keys ...string) (int64, error) {
	ctx, cancel := c.op()
	defer cancel()
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}
	return sumCounters(vals)
}

// SetIfCountersSum writes key only while the counters still add up to want.
// The counters are watched, so an increment that lands between the check and
// the write aborts it with ErrCountersMoved.
func (c *RedisCache) SetIfCountersSum(counters []string, want int64, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.op()
	defer cancel()
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, counters...).Result()
		if err != nil {
			return err
		}
		got, err := sumCounters(vals)
		if err != nil {
			return err
		}
		if got != want {
			return ErrCountersMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			return nil
		})
		return err
	}, counters...)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrCountersMoved
	}
	return err
}

func sumCounters(vals []interface{}) (int64, error) {
	var sum int64
	for _, v := range vals {
		switch v := v.(type) {
		case nil:
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("counter %q: %w", v, err)
			}
			sum += n
		default:
			return 0, fmt.Errorf("unexpected counter value %T", v)
		}
	}
	return sum, nil
}

// Ping checks if Redis is alive
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
