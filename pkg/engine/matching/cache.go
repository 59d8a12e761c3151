package matching

import (
	"sync"

	"github.com/clonetrace/clonetrace/pkg/models"
)

// Cache memoises combined-similarity computations keyed by the unordered
// pair of block ids, so that it can be shared between the forward and
// backward MethodMatcher passes a caller runs for bidirectional
// consistency.
type Cache struct {
	mu sync.Mutex
	m  map[models.PairKey]int
}

// NewCache returns an empty, ready-to-share Cache.
func NewCache() *Cache {
	return &Cache{m: make(map[models.PairKey]int)}
}

func (c *Cache) get(a, b string) (int, bool) {
	if c == nil {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[models.NewPairKey(a, b)]
	return v, ok
}

func (c *Cache) put(a, b string, sim int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[models.NewPairKey(a, b)] = sim
}
