package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Cache is a TTL map implementing ports.Cache.
type Cache struct {
	mu    sync.Mutex
	rows  map[string]cacheEntry
	nowFn func() time.Time
}

func NewCache() *Cache {
	return &Cache{rows: map[string]cacheEntry{}, nowFn: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.rows[key]
	if !ok || c.expired(entry) {
		delete(c.rows, key)
		return "", ports.ErrCacheMiss
	}
	return entry.value, nil
}

func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = cacheEntry{value: value, expiresAt: c.deadline(ttl)}
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.rows, key)
	}
	return nil
}

func (c *Cache) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.rows[key]
	if !ok || c.expired(entry) {
		entry = cacheEntry{value: "0", expiresAt: c.deadline(ttl)}
	}
	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	c.rows[key] = entry
	return n, nil
}

func (c *Cache) expired(entry cacheEntry) bool {
	return !entry.expiresAt.IsZero() && !c.nowFn().Before(entry.expiresAt)
}

func (c *Cache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.nowFn().Add(ttl)
}
