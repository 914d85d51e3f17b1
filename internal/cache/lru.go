// Package cache provides caching implementations for medilint.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/medilint/medilint/internal/domain"
)

const defaultMaxEntries = 10000

// LRUCache is an in-process cache with TTL and least-recently-used
// eviction. It backs the Community tier on its own and serves as the
// local layer of the two-phase cache in Pro. Entries are scoped by
// tenant so one clinic's cached analyses never leak into another's.
type LRUCache struct {
	mu       sync.RWMutex
	capacity int
	byKey    map[string]*list.Element
	recency  *list.List
	counters map[string]*windowCounter
}

type lruItem struct {
	key     string
	payload []byte
	expiry  time.Time
}

// windowCounter is a fixed-window counter. The count resets when the
// window expires, which is the semantic usage tracking needs.
type windowCounter struct {
	n      int64
	expiry time.Time
}

// NewLRUCache creates a cache holding at most maxSize entries.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = defaultMaxEntries
	}
	return &LRUCache{
		capacity: maxSize,
		byKey:    make(map[string]*list.Element),
		recency:  list.New(),
		counters: make(map[string]*windowCounter),
	}
}

func scoped(tenantID, key string) string {
	return tenantID + ":" + key
}

// Get returns the stored bytes for key, or nil on a miss. Expired
// entries are dropped on access rather than by a background sweeper.
func (c *LRUCache) Get(ctx context.Context, tenantID string, key string) ([]byte, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenantID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.byKey[scoped(tenantID, key)]
	if !ok {
		return nil, nil
	}
	item := elem.Value.(*lruItem)
	if time.Now().After(item.expiry) {
		c.drop(elem)
		return nil, nil
	}
	c.recency.MoveToFront(elem)
	return item.payload, nil
}

// Set stores value under key for ttl, evicting the least recently used
// entries once the cache is full.
func (c *LRUCache) Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID is required")
	}

	k := scoped(tenantID, key)
	expiry := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byKey[k]; ok {
		item := elem.Value.(*lruItem)
		item.payload = value
		item.expiry = expiry
		c.recency.MoveToFront(elem)
		return nil
	}

	c.byKey[k] = c.recency.PushFront(&lruItem{key: k, payload: value, expiry: expiry})
	for c.recency.Len() > c.capacity {
		if oldest := c.recency.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
	return nil
}

// Delete removes key if present.
func (c *LRUCache) Delete(ctx context.Context, tenantID string, key string) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byKey[scoped(tenantID, key)]; ok {
		c.drop(elem)
	}
	return nil
}

// GetAnalysis returns a cached analysis result by text digest, or nil
// on a miss.
func (c *LRUCache) GetAnalysis(ctx context.Context, tenantID string, digest string) (*domain.AnalysisResult, error) {
	data, err := c.Get(ctx, tenantID, "analysis:"+digest)
	if err != nil || data == nil {
		return nil, err
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetAnalysis caches an analysis result keyed by text digest. Caching
// by digest is sound because analysis is deterministic for a loaded
// rule set.
func (c *LRUCache) SetAnalysis(ctx context.Context, tenantID string, digest string, result *domain.AnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.Set(ctx, tenantID, "analysis:"+digest, data, ttl)
}

// IncrementCounter bumps a fixed-window counter and returns the new
// count. A counter whose window has passed restarts at 1.
func (c *LRUCache) IncrementCounter(ctx context.Context, tenantID string, key string, window time.Duration) (int64, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("tenantID is required")
	}

	k := scoped(tenantID, "counter:"+key)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	wc, ok := c.counters[k]
	if !ok || now.After(wc.expiry) {
		c.counters[k] = &windowCounter{n: 1, expiry: now.Add(window)}
		return 1, nil
	}
	wc.n++
	return wc.n, nil
}

// Ping reports cache health. The in-process cache is always healthy.
func (c *LRUCache) Ping(ctx context.Context) error {
	return nil
}

// Close drops all entries and counters.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*list.Element)
	c.recency = list.New()
	c.counters = make(map[string]*windowCounter)
	return nil
}

// Stats returns the current entry count and configured capacity.
func (c *LRUCache) Stats() (size int, capacity int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recency.Len(), c.capacity
}

// drop removes elem from both the recency list and the index. Callers
// hold the write lock.
func (c *LRUCache) drop(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.byKey, elem.Value.(*lruItem).key)
}
