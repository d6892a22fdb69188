package enrich

import (
	"container/list"
	"sync"
)

// cacheEntry holds the validated fields an enrichment produced, merged
// over the basic analysis on a hit. Only fully validated responses are
// ever stored.
type cacheEntry struct {
	WeakTopics []string
	Feedback   string
	Model      string
}

// analysisCache is a process-wide LRU keyed by submission content hash.
// The mutex guards only map and list operations, never a network call.
type analysisCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // front = most recent
}

type cacheItem struct {
	key   string
	entry cacheEntry
}

func newAnalysisCache(maxSize int) *analysisCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &analysisCache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *analysisCache) Get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).entry, true
}

func (c *analysisCache) Set(key string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheItem).entry = entry
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheItem{key: key, entry: entry})
	for c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheItem).key)
	}
}

func (c *analysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
