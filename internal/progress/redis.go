package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long an idle session's state survives in
// Redis before expiring.
const DefaultSessionTTL = 30 * 24 * time.Hour

// RedisSessions hands out per-session Store handles backed by one Redis
// hash per session id.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// DialRedis connects to a Redis URL and verifies the connection.
func DialRedis(ctx context.Context, url string) (*RedisSessions, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisSessions{client: client, ttl: DefaultSessionTTL}, nil
}

func (r *RedisSessions) Close() error { return r.client.Close() }

// HealthCheck verifies the connection is alive.
func (r *RedisSessions) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Session returns the Store handle for one session id.
func (r *RedisSessions) Session(sessionID string) Store {
	return &redisStore{client: r.client, hash: "session:" + sessionID, ttl: r.ttl}
}

// redisStore keeps one session's keys in a single Redis hash so a whole
// session can expire together.
type redisStore struct {
	client *redis.Client
	hash   string
	ttl    time.Duration
}

func (s *redisStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	v, err := s.client.HGet(ctx, s.hash, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session get %q: %w", key, err)
	}
	return json.RawMessage(v), true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.hash, key, string(value))
	pipe.Expire(ctx, s.hash, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session set %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Pop(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.hash, key).Err(); err != nil {
		return fmt.Errorf("session pop %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	all, err := s.client.HKeys(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("session keys: %w", err)
	}
	var keys []string
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
