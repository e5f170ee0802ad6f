// Package cache is a process-local TTL map for read-heavy responses.
//
// Entries expire lazily: a stale entry is dropped by the Get that finds it,
// there is no background sweep. Coherence is the caller's job; every write
// path must call Invalidate before the next read can be trusted. Readers
// that fill on a miss use GetGen and SetIfGen so a fill started before an
// Invalidate cannot land after it.
package cache

import (
	"strings"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	m       map[string]entry[V]
	gen     uint64
	now     func() time.Time
	metrics *Metrics
}

type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *Metrics
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache[V]{
		ttl:     ttl,
		m:       make(map[string]entry[V]),
		now:     o.now,
		metrics: o.metrics,
	}
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

func (c *Cache[V]) Get(key string) (V, bool) {
	v, _, ok := c.GetGen(key)
	return v, ok
}

// GetGen is Get that also reports the current generation, for a later
// SetIfGen.
func (c *Cache[V]) GetGen(key string) (V, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if ok && c.now().Sub(e.storedAt) < c.ttl {
		c.metrics.hit()
		return e.value, c.gen, true
	}
	if ok {
		delete(c.m, key)
		c.metrics.expired()
		c.metrics.size(len(c.m))
	}
	c.metrics.miss()

	var zero V
	return zero, c.gen, false
}

func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(key, v)
}

// SetIfGen stores v only if no Invalidate ran since gen was read.
func (c *Cache[V]) SetIfGen(key string, v V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		c.metrics.dropped()
		return false
	}
	c.set(key, v)
	return true
}

func (c *Cache[V]) set(key string, v V) {
	c.m[key] = entry[V]{value: v, storedAt: c.now()}
	c.metrics.size(len(c.m))
}

// Invalidate removes every key containing pattern. An empty pattern clears
// the whole cache. It returns the number of entries removed. The generation
// moves even when nothing matched, so fills already in flight are discarded.
func (c *Cache[V]) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++

	n := 0
	if pattern == "" {
		n = len(c.m)
		clear(c.m)
	} else {
		for k := range c.m {
			if strings.Contains(k, pattern) {
				delete(c.m, k)
				n++
			}
		}
	}

	c.metrics.invalidated(n)
	c.metrics.size(len(c.m))
	return n
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
