package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/pkg/rafiq/textutil"
	"github.com/kart-io/rafiq/pkg/component/redis"
	"github.com/kart-io/rafiq/pkg/utils/json"
	goredis "github.com/redis/go-redis/v9"
)

// AnswerCacheConfig configures the answer cache.
type AnswerCacheConfig struct {
	// Enabled toggles caching.
	Enabled bool
	// TTL is how long a cached answer lives.
	TTL time.Duration
	// KeyPrefix is prepended to every cache key.
	KeyPrefix string
}

// AnswerCache caches chain answers in Redis, keyed by question, response
// language and department filter.
type AnswerCache struct {
	client *redis.Client
	rdb    *goredis.Client
	config *AnswerCacheConfig
}

// NewAnswerCache creates an AnswerCache. A nil client yields a disabled
// cache whose operations are no-ops.
func NewAnswerCache(client *redis.Client, config *AnswerCacheConfig) *AnswerCache {
	if config == nil {
		config = &AnswerCacheConfig{
			Enabled:   false,
			TTL:       1 * time.Hour,
			KeyPrefix: "rafiq:answer:",
		}
	}
	c := &AnswerCache{
		client: client,
		config: config,
	}
	if client != nil {
		c.rdb = client.Client()
	}
	return c
}

// cacheKey hashes the question together with the response language and the
// department filter, so the same question cached for one language or
// department set never serves another.
func (c *AnswerCache) cacheKey(question, lang string, departments []string) string {
	material := strings.ToLower(strings.TrimSpace(question)) + "|" + lang + "|" + strings.Join(departments, ",")
	return c.config.KeyPrefix + textutil.HashString(material)
}

// Get returns the cached answer for question, or nil on a miss.
func (c *AnswerCache) Get(ctx context.Context, question, lang string, departments []string) (*Answer, error) {
	if !c.config.Enabled || c.rdb == nil {
		return nil, fmt.Errorf("cache not enabled or redis not available")
	}

	key := c.cacheKey(question, lang, departments)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			logger.Debugw("answer cache miss", "key", key)
			return nil, nil
		}
		logger.Warnw("failed to get from cache", "error", err.Error(), "key", key)
		return nil, err
	}

	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		logger.Warnw("failed to unmarshal cached answer", "error", err.Error(), "key", key)
		_ = c.rdb.Del(ctx, key).Err()
		return nil, err
	}
	answer.Cached = true

	logger.Infow("answer cache hit", "key", key, "source", answer.Source)
	return &answer, nil
}

// Set stores answer for question.
func (c *AnswerCache) Set(ctx context.Context, question, lang string, departments []string, answer *Answer) error {
	if !c.config.Enabled || c.rdb == nil {
		return nil
	}

	key := c.cacheKey(question, lang, departments)

	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warnw("failed to marshal answer for caching", "error", err.Error())
		return err
	}

	if err := c.rdb.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set cache", "error", err.Error(), "key", key)
		return err
	}

	logger.Debugw("cached answer", "key", key, "ttl", c.config.TTL)
	return nil
}

// Clear deletes every cached answer under the configured prefix.
func (c *AnswerCache) Clear(ctx context.Context) error {
	if !c.config.Enabled || c.rdb == nil {
		return nil
	}

	pattern := c.config.KeyPrefix + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
		} else {
			deleted++
		}
	}

	if err := iter.Err(); err != nil {
		logger.Warnw("error during cache scan", "error", err.Error())
		return err
	}

	logger.Infow("cleared answer cache", "deleted_count", deleted)
	return nil
}

// Stats reports the cache key count, configuration and connection health.
func (c *AnswerCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	if !c.config.Enabled || c.rdb == nil {
		return map[string]interface{}{
			"enabled": false,
		}, nil
	}

	pattern := c.config.KeyPrefix + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	keyCount := 0
	for iter.Next(ctx) {
		keyCount++
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	stats := map[string]interface{}{
		"enabled":    true,
		"key_count":  keyCount,
		"ttl":        c.config.TTL.String(),
		"key_prefix": c.config.KeyPrefix,
	}
	if c.client != nil {
		stats["redis"] = c.client.HealthWithStats(ctx)
	}
	return stats, nil
}
