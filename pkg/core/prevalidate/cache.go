package prevalidate

import (
	"container/list"

	"github.com/retailops/shiftbalance/pkg/core/model"
)

// DefaultCacheSize bounds the validation result cache
const DefaultCacheSize = 50

// resultCache is a small LRU over validation results. The engine does not
// watch entity collections for changes, so the owner must call Invalidate
// whenever shifts, employees or stores are mutated.
type resultCache struct {
	capacity int
	order    *list.List // Front = most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result *model.ValidationResult
}

func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &resultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *resultCache) get(key string) (*model.ValidationResult, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

func (c *resultCache) put(key string, result *model.ValidationResult) {
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).result = result
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *resultCache) reset() {
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func (c *resultCache) len() int {
	return c.order.Len()
}
