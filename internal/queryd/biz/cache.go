package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ariel1441/ai-rag-project-sub000/internal/model"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/utils/json"
)

// QueryCacheConfig configures the query response cache.
type QueryCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	// KeyPrefix namespaces cache keys in a shared redis.
	KeyPrefix string
}

// QueryCache caches full query responses in redis, keyed by a SHA-256
// of the raw query text plus everything else that shapes the response:
// the request mode and the page size. Disabled or nil-redis caches
// degrade to no-ops.
type QueryCache struct {
	redis  *goredis.Client
	config *QueryCacheConfig
}

// NewQueryCache creates the cache. A nil config disables caching.
func NewQueryCache(redis *goredis.Client, config *QueryCacheConfig) *QueryCache {
	if config == nil {
		config = &QueryCacheConfig{
			Enabled:   false,
			TTL:       time.Hour,
			KeyPrefix: "queryd:query:",
		}
	}
	return &QueryCache{redis: redis, config: config}
}

func (c *QueryCache) cacheKey(text, mode string, topK int) string {
	hash := sha256.Sum256([]byte(mode + "\x00" + strconv.Itoa(topK) + "\x00" + text))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached response for a query, or nil on a miss.
// Cache failures are reported but a miss and a failure both leave the
// caller on the uncached path.
func (c *QueryCache) Get(ctx context.Context, text, mode string, topK int) (*model.QueryResponse, error) {
	if !c.config.Enabled || c.redis == nil {
		return nil, nil
	}

	key := c.cacheKey(text, mode, topK)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			logger.Debugw("query cache miss", "key", key)
			return nil, nil
		}
		logger.Warnw("query cache get failed", "error", err.Error(), "key", key)
		return nil, err
	}

	var resp model.QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warnw("dropping corrupt cache entry", "error", err.Error(), "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil, err
	}

	logger.Debugw("query cache hit", "key", key, "matches", len(resp.Matches))
	return &resp, nil
}

// Set stores a response. Degraded responses are not cached: a later
// identical query should get another shot at synthesis.
func (c *QueryCache) Set(ctx context.Context, text, mode string, topK int, resp *model.QueryResponse) error {
	if !c.config.Enabled || c.redis == nil || resp == nil || resp.Degraded {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logger.Warnw("failed to marshal response for caching", "error", err.Error())
		return err
	}

	key := c.cacheKey(text, mode, topK)
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("query cache set failed", "error", err.Error(), "key", key)
		return err
	}
	return nil
}

// Clear removes every cached query response under the key prefix.
func (c *QueryCache) Clear(ctx context.Context) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	logger.Infow("cleared query cache", "deleted", deleted)
	return nil
}

// Stats reports cache configuration and current key count.
func (c *QueryCache) Stats(ctx context.Context) (map[string]any, error) {
	if !c.config.Enabled || c.redis == nil {
		return map[string]any{"enabled": false}, nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	keys := 0
	for iter.Next(ctx) {
		keys++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"enabled":    true,
		"key_count":  keys,
		"ttl":        c.config.TTL.String(),
		"key_prefix": c.config.KeyPrefix,
	}, nil
}
