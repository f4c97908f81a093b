package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/uth-confms/confms/pkg/observability"
)

const (
	// DefaultCacheSize bounds the in-process cache.
	DefaultCacheSize = 1024

	// DefaultCacheTTL is how long cached role sets stay valid.
	DefaultCacheTTL = 5 * time.Minute

	redisKeyPrefix = "confms:authz:roles:"
)

type cachedRoles struct {
	Assignments []RoleAssignment `json:"assignments"`
	expiresAt   time.Time
}

// RoleCache caches active role assignments per account. Lookups hit an
// in-process LRU first and fall back to Redis when configured, so a
// fleet of instances shares invalidations through the second tier.
type RoleCache struct {
	l1      *lru.Cache[string, cachedRoles]
	redis   *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewRoleCache builds a cache. The redis client may be nil, leaving
// only the in-process tier. Metrics may be nil.
func NewRoleCache(size int, ttl time.Duration, rdb *redis.Client, metrics *observability.Metrics) (*RoleCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	l1, err := lru.New[string, cachedRoles](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create role cache: %w", err)
	}

	return &RoleCache{l1: l1, redis: rdb, ttl: ttl, metrics: metrics}, nil
}

// Get returns the cached assignments for an account, if present and fresh.
func (c *RoleCache) Get(ctx context.Context, accountID string) ([]RoleAssignment, bool) {
	if entry, ok := c.l1.Get(accountID); ok {
		if time.Now().Before(entry.expiresAt) {
			c.hit("l1")
			return entry.Assignments, true
		}
		c.l1.Remove(accountID)
	}
	c.miss("l1")

	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, redisKeyPrefix+accountID).Bytes()
	if err != nil {
		c.miss("l2")
		return nil, false
	}

	var entry cachedRoles
	if err := json.Unmarshal(data, &entry); err != nil {
		c.miss("l2")
		return nil, false
	}
	c.hit("l2")

	entry.expiresAt = time.Now().Add(c.ttl)
	c.l1.Add(accountID, entry)
	return entry.Assignments, true
}

// Set stores the assignments in both tiers.
func (c *RoleCache) Set(ctx context.Context, accountID string, assignments []RoleAssignment) {
	entry := cachedRoles{
		Assignments: assignments,
		expiresAt:   time.Now().Add(c.ttl),
	}
	c.l1.Add(accountID, entry)

	if c.redis != nil {
		if data, err := json.Marshal(entry); err == nil {
			c.redis.Set(ctx, redisKeyPrefix+accountID, data, c.ttl)
		}
	}
}

// Invalidate drops the cached assignments for an account from both tiers.
func (c *RoleCache) Invalidate(ctx context.Context, accountID string) {
	c.l1.Remove(accountID)
	if c.redis != nil {
		c.redis.Del(ctx, redisKeyPrefix+accountID)
	}
}

func (c *RoleCache) hit(tier string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(tier).Inc()
	}
}

func (c *RoleCache) miss(tier string) {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(tier).Inc()
	}
}
