package embedcache

import (
	"sort"
	"sync"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultCapacity   = 100
	DefaultEvictCount = 20
)

type entry struct {
	vector    []float32
	createdAt time.Time
}

// Cache maps query text to a previously computed embedding vector. Entries
// expire after a fixed TTL (checked lazily on lookup) and a size sweep after
// each insert drops the oldest entries once the capacity threshold is
// exceeded. There is at most one live entry per distinct query text.
//
// The cache is the only process-wide mutable state in the pipeline; a single
// mutex serializes the check-and-return and insert-plus-sweep regions.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	capacity   int
	evictCount int
	now        func() time.Time
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithCapacity(capacity, evictCount int) Option {
	return func(c *Cache) {
		c.capacity = capacity
		c.evictCount = evictCount
	}
}

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		ttl:        DefaultTTL,
		capacity:   DefaultCapacity,
		evictCount: DefaultEvictCount,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.capacity <= 0 {
		c.capacity = DefaultCapacity
	}
	if c.evictCount <= 0 {
		c.evictCount = DefaultEvictCount
	}
	return c
}

// Get returns the cached vector for text, or nil if absent. Expired entries
// are treated as absent and removed on access.
func (c *Cache) Get(text string) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries[text]
	if !ok {
		return nil
	}
	if c.now().Sub(item.createdAt) > c.ttl {
		delete(c.entries, text)
		return nil
	}
	return cloneVector(item.vector)
}

// Put stores the vector and then sweeps: once the entry count exceeds the
// capacity threshold, the oldest-by-timestamp entries are removed.
func (c *Cache) Put(text string, vector []float32) {
	if len(vector) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[text] = entry{vector: cloneVector(vector), createdAt: c.now()}
	if len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	type aged struct {
		key       string
		createdAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for key, item := range c.entries {
		all = append(all, aged{key: key, createdAt: item.createdAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})
	evict := c.evictCount
	if evict > len(all) {
		evict = len(all)
	}
	for _, item := range all[:evict] {
		delete(c.entries, item.key)
	}
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
