package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keySuggest = "suggest:"

// SuggestionCache caches remote suggestion lists per normalized title in Redis.
type SuggestionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSuggestionCache returns a new SuggestionCache. keyPrefix namespaces its keys.
func NewSuggestionCache(rdb *redis.Client, ttl time.Duration, keyPrefix string) *SuggestionCache {
	return &SuggestionCache{rdb: rdb, ttl: ttl, prefix: keyPrefix + keySuggest}
}

// Get returns the cached list for title, or nil on a miss.
func (c *SuggestionCache) Get(ctx context.Context, title string) ([]string, error) {
	b, err := c.rdb.Get(ctx, c.prefix+NormalizeTitle(title)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Set stores list for title.
func (c *SuggestionCache) Set(ctx context.Context, title string, list []string) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+NormalizeTitle(title), b, c.ttl).Err()
}

// InvalidateAll removes every cached suggestion list (used when the API key changes).
func (c *SuggestionCache) InvalidateAll(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// NormalizeTitle is the cache and singleflight key for a title.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
