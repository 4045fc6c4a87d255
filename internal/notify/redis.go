package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "finsight:notify:"

// RedisStore keeps notification slots in Redis so several server replicas
// share them. Expiry is delegated to the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient connects to addr, accepting either host:port or a redis:// URL.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func redisKey(client string) string {
	return redisKeyPrefix + client
}

func (s *RedisStore) Put(ctx context.Context, client string, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(client), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("set notification: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, client string) (Notification, bool, error) {
	body, err := s.client.Get(ctx, redisKey(client)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Notification{}, false, nil
	}
	if err != nil {
		return Notification{}, false, fmt.Errorf("get notification: %w", err)
	}
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, false, fmt.Errorf("decode notification: %w", err)
	}
	return n, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, client string) error {
	if err := s.client.Del(ctx, redisKey(client)).Err(); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
