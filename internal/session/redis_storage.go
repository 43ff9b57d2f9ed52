package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for RedisStorage.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds how long an abandoned session survives. Zero keeps keys
	// until logout.
	TTL time.Duration

	// Prefix namespaces the keys, default "his:session:".
	Prefix string
}

// RedisStorage keeps a scope's keys in Redis. Terminals that share a scope
// (for example a ward kiosk with several screens) share the session.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient opens a client from cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStorage scopes keys as <prefix><scope>:<key>.
func NewRedisStorage(client *redis.Client, cfg RedisConfig, scope string) *RedisStorage {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "his:session:"
	}
	return &RedisStorage{
		client: client,
		prefix: prefix + scope + ":",
		ttl:    cfg.TTL,
	}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

// Get implements Storage.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// SetAll implements Storage inside a MULTI/EXEC transaction.
func (r *RedisStorage) SetAll(ctx context.Context, values map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete implements Storage.
func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Name implements Storage.
func (r *RedisStorage) Name() string {
	return "redis"
}
