package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evidence-toolkit/evitool/internal/logging"
)

// RemoteCache is the optional shared tier: a team working the same case
// from different machines can skip recomputation entirely, not just
// within one process. Adapted from the teacher's
// internal/cache/redis_client.go Get/Set/Delete shape; key construction
// and TTL default (15 minutes) are kept, case-summary/correlation replace
// baseline-metric cache keys.
type RemoteCache struct {
	client *redis.Client
	log    *logging.Logger
	ttl    time.Duration
}

// NewRemoteCache connects to url (a redis:// connection string) and
// verifies connectivity before returning, so a misconfigured remote tier
// fails fast at startup rather than silently on first use.
func NewRemoteCache(ctx context.Context, url string) (*RemoteCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	log := logging.With("component", "cache-remote")
	log.Info("redis cache connected", "addr", opts.Addr)
	return &RemoteCache{client: client, log: log, ttl: 15 * time.Minute}, nil
}

// Close closes the underlying redis client.
func (r *RemoteCache) Close() error {
	return r.client.Close()
}

func (r *RemoteCache) get(ctx context.Context, key string, target interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed for key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), target); err != nil {
		return false, fmt.Errorf("unmarshal cached value for key %s: %w", key, err)
	}
	return true, nil
}

func (r *RemoteCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for key %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed for key %s: %w", key, err)
	}
	return nil
}

func (r *RemoteCache) delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed for key %s: %w", key, err)
	}
	return nil
}
