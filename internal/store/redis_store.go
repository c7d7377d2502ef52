package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	followersCountKeyPrefix = "network:followers:"
	likesCountKeyPrefix     = "network:likes:"
)

// CountStore defines cache operations for follower and like counts. All
// operations are best effort: callers fall back to the database on miss or
// error.
type CountStore interface {
	GetFollowersCount(ctx context.Context, userID string) (int64, bool, error)
	SetFollowersCount(ctx context.Context, userID string, count int64) error
	InvalidateFollowersCount(ctx context.Context, userID string) error

	GetLikesCount(ctx context.Context, postID string) (int64, bool, error)
	SetLikesCount(ctx context.Context, postID string, count int64) error
	CondIncrLikesCount(ctx context.Context, postID string) error
	CondDecrLikesCount(ctx context.Context, postID string) error

	Close() error
}

// RedisCountStore implements CountStore backed by Redis.
type RedisCountStore struct {
	client *redis.Client
}

// NewRedisCountStore creates a new Redis-backed count store.
func NewRedisCountStore(address, password string, db int) (*RedisCountStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCountStore{client: client}, nil
}

func followersCountKey(userID string) string {
	return followersCountKeyPrefix + userID
}

func likesCountKey(postID string) string {
	return likesCountKeyPrefix + postID
}

// condIncrScript atomically increments the key only if it exists.
// Returns the new value, or 0 if the key did not exist.
var condIncrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  return redis.call("INCR", key)
end
return 0
`)

// condDecrScript atomically decrements the key only if it exists and the
// current value is positive. Returns the new value, or 0 otherwise.
var condDecrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  local val = tonumber(redis.call("GET", key))
  if val and val > 0 then
    return redis.call("DECR", key)
  end
end
return 0
`)

func (s *RedisCountStore) getCount(ctx context.Context, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get count: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse count: %w", err)
	}
	return count, true, nil
}

// GetFollowersCount returns the cached followers count for a user.
// Returns (count, true, nil) on hit, (0, false, nil) on miss.
func (s *RedisCountStore) GetFollowersCount(ctx context.Context, userID string) (int64, bool, error) {
	return s.getCount(ctx, followersCountKey(userID))
}

// SetFollowersCount caches the followers count for a user.
func (s *RedisCountStore) SetFollowersCount(ctx context.Context, userID string, count int64) error {
	if err := s.client.Set(ctx, followersCountKey(userID), count, 0).Err(); err != nil {
		return fmt.Errorf("redis set followers count: %w", err)
	}
	return nil
}

// InvalidateFollowersCount drops the cached followers count for a user so the
// next read repopulates it from the database.
func (s *RedisCountStore) InvalidateFollowersCount(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, followersCountKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del followers count: %w", err)
	}
	return nil
}

// GetLikesCount returns the cached like count for a post.
func (s *RedisCountStore) GetLikesCount(ctx context.Context, postID string) (int64, bool, error) {
	return s.getCount(ctx, likesCountKey(postID))
}

// SetLikesCount caches the like count for a post.
func (s *RedisCountStore) SetLikesCount(ctx context.Context, postID string, count int64) error {
	if err := s.client.Set(ctx, likesCountKey(postID), count, 0).Err(); err != nil {
		return fmt.Errorf("redis set likes count: %w", err)
	}
	return nil
}

// CondIncrLikesCount atomically increments the cached like count only if the
// key exists; a missing key stays missing until a read repopulates it.
func (s *RedisCountStore) CondIncrLikesCount(ctx context.Context, postID string) error {
	if err := condIncrScript.Run(ctx, s.client, []string{likesCountKey(postID)}).Err(); err != nil {
		return fmt.Errorf("redis cond incr likes count: %w", err)
	}
	return nil
}

// CondDecrLikesCount atomically decrements the cached like count only if the
// key exists and is positive.
func (s *RedisCountStore) CondDecrLikesCount(ctx context.Context, postID string) error {
	if err := condDecrScript.Run(ctx, s.client, []string{likesCountKey(postID)}).Err(); err != nil {
		return fmt.Errorf("redis cond decr likes count: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisCountStore) Close() error {
	return s.client.Close()
}

// Ensure interface is satisfied at compile time.
var _ CountStore = (*RedisCountStore)(nil)
