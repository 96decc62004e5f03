package matching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const matchCacheKeyPrefix = "match_results:"

// Cache keeps ranked results in Redis for a short TTL so repeated matching
// requests (e.g. a patient refreshing the booking page) skip re-scoring the
// pool. Nil-safe: a nil Cache never hits.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a match cache. Returns nil when no redis client is
// configured, which callers treat as caching disabled.
func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{redis: redisClient, ttl: ttl}
}

// Get returns cached matches for the criteria, if present.
func (c *Cache) Get(ctx context.Context, criteria Criteria, limit int) ([]Match, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, cacheKey(criteria, limit)).Result()
	if err != nil {
		return nil, false
	}
	var matches []Match
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, false
	}
	return matches, true
}

// Set stores ranked matches under the criteria key.
func (c *Cache) Set(ctx context.Context, criteria Criteria, limit int, matches []Match) {
	if c == nil || c.redis == nil {
		return
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return
	}
	c.redis.Set(ctx, cacheKey(criteria, limit), raw, c.ttl)
}

func cacheKey(criteria Criteria, limit int) string {
	payload, _ := json.Marshal(criteria)
	sum := sha256.Sum256(fmt.Appendf(payload, "|%d", limit))
	return matchCacheKeyPrefix + hex.EncodeToString(sum[:])
}
