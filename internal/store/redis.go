package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAPI is the slice of *redis.Client the store uses.
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis keeps each document under "<prefix>:<key>" with no expiry.
type Redis struct {
	rdb    RedisAPI
	prefix string
}

func NewRedis(rdb RedisAPI, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func newRedisFromConfig(cfg Config) (*Redis, error) {
	if cfg.Endpoint == "" {
		return nil, &ConfigError{Backend: BackendRedis, Reason: "endpoint (host:port) is empty"}
	}
	opts := &redis.Options{Addr: cfg.Endpoint}
	if cfg.Mode() == ModeManual {
		opts.Username = cfg.SiteID
		opts.Password = cfg.Token
	}
	return NewRedis(redis.NewClient(opts), cfg.Name), nil
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) GetJSON(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", r.key(key), err)
	}
	if err := checkJSON(b); err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", r.key(key), err)
	}
	return json.RawMessage(b), true, nil
}

func (r *Redis) PutJSON(ctx context.Context, key string, doc json.RawMessage) error {
	if err := checkJSON(doc); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(key), []byte(doc), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key(key), err)
	}
	return nil
}
