package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"rewards-optimizer-go/internal/rewards"
)

type cacheItem struct {
	key       string
	data      rewards.Recommendation
	expiresAt time.Time
}

// MemoryCache is an in-process LRU with TTL, used when no Redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	gens    map[uint]int64
	now     func() time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		gens:    make(map[uint]int64),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, userID uint, merchant string, amount float64) (rewards.Recommendation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[entryKey(userID, c.gens[userID], merchant, amount)]
	if !ok {
		return rewards.Recommendation{}, false, nil
	}
	item := elem.Value.(*cacheItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return rewards.Recommendation{}, false, nil
	}
	c.lru.MoveToFront(elem)
	return item.data, true, nil
}

func (c *MemoryCache) Put(_ context.Context, userID uint, merchant string, amount float64, rec rewards.Recommendation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSize <= 0 {
		return nil
	}

	key := entryKey(userID, c.gens[userID], merchant, amount)
	item := &cacheItem{key: key, data: rec, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.lru.PushFront(item)
	for c.lru.Len() > c.maxSize {
		c.removeElement(c.lru.Back())
	}
	return nil
}

// Invalidate bumps the user's generation; stale entries age out of the LRU.
func (c *MemoryCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	return nil
}

// Size returns the number of live and not-yet-evicted entries.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
