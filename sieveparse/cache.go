package sieveparse

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/migadu/sievefilter/pkg/metrics"
	"lukechampine.com/blake3"
)

type scriptCacheEntry struct {
	script    *Script
	createdAt time.Time
}

// ScriptCache is an LRU cache of parsed scripts with a TTL, keyed by the
// script text. A cache belongs to one Parser, since the parser's extensions
// and checks shape every result. Cached scripts are shared and must not be
// modified.
type ScriptCache struct {
	mu          sync.Mutex
	parser      *Parser
	cache       map[string]*scriptCacheEntry
	maxEntries  int
	ttl         time.Duration
	accessOrder []string // least recently used first
	now         func() time.Time
}

// NewScriptCache creates a cache of scripts parsed by p holding at most
// maxEntries scripts. Zero maxEntries means unbounded.
func NewScriptCache(p *Parser, maxEntries int, ttl time.Duration) *ScriptCache {
	return &ScriptCache{
		parser:      p,
		cache:       make(map[string]*scriptCacheEntry),
		maxEntries:  maxEntries,
		ttl:         ttl,
		accessOrder: make([]string, 0, maxEntries),
		now:         time.Now,
	}
}

func hashScript(script string) string {
	sum := blake3.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached parse of script.
func (c *ScriptCache) Get(script string) (*Script, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashScript(script)
	entry, ok := c.cache[key]
	if !ok {
		metrics.ScriptCacheMisses.Inc()
		return nil, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		c.remove(key)
		metrics.ScriptCacheMisses.Inc()
		return nil, false
	}

	c.touch(key)
	metrics.ScriptCacheHits.Inc()
	return entry.script, true
}

// Put stores s as the parse of script, evicting the least recently used
// entry when full.
func (c *ScriptCache) Put(script string, s *Script) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashScript(script)
	if entry, ok := c.cache[key]; ok {
		entry.script = s
		entry.createdAt = c.now()
		c.touch(key)
		return
	}

	if c.maxEntries > 0 && len(c.cache) >= c.maxEntries {
		c.evictOldest()
	}
	c.cache[key] = &scriptCacheEntry{script: s, createdAt: c.now()}
	c.accessOrder = append(c.accessOrder, key)
	metrics.ScriptCacheEntries.Set(float64(len(c.cache)))
}

// GetOrParse returns the cached parse of script or parses and caches it.
// Scripts rejected by the parser are not cached.
func (c *ScriptCache) GetOrParse(script string) (*Script, error) {
	if s, ok := c.Get(script); ok {
		return s, nil
	}
	s, err := c.parser.Parse(script)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sieve script: %w", err)
	}
	c.Put(script, s)
	return s, nil
}

// CleanExpired removes every entry older than the TTL.
func (c *ScriptCache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.cache {
		if now.Sub(entry.createdAt) > c.ttl {
			c.remove(key)
		}
	}
}

func (c *ScriptCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*scriptCacheEntry)
	c.accessOrder = make([]string, 0, c.maxEntries)
	metrics.ScriptCacheEntries.Set(0)
}

func (c *ScriptCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// touch moves key to the most recently used end.
func (c *ScriptCache) touch(key string) {
	c.dropFromOrder(key)
	c.accessOrder = append(c.accessOrder, key)
}

func (c *ScriptCache) remove(key string) {
	delete(c.cache, key)
	c.dropFromOrder(key)
	metrics.ScriptCacheEntries.Set(float64(len(c.cache)))
}

func (c *ScriptCache) dropFromOrder(key string) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			return
		}
	}
}

func (c *ScriptCache) evictOldest() {
	if len(c.accessOrder) == 0 {
		return
	}
	c.remove(c.accessOrder[0])
}
