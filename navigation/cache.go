package navigation

import (
	"slices"
	"sync"
)

// RouteKey identifies a query: grid contents plus endpoints
type RouteKey struct {
	Fingerprint string
	Start, Goal Position
}

// RouteCache memoises Solve results for repeated queries on unchanged grids
// Eviction is oldest-first once Capacity entries are held; safe for concurrent use
// Callers own the paths they receive, stored results are never shared
type RouteCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[RouteKey]Result
	order    []RouteKey // Insertion order, oldest first

	// Counters since creation
	hits, misses int
}

// NewRouteCache creates a cache holding at most capacity results, minimum 1
func NewRouteCache(capacity int) *RouteCache {
	capacity = max(capacity, 1)
	return &RouteCache{
		capacity: capacity,
		entries:  make(map[RouteKey]Result, capacity),
		order:    make([]RouteKey, 0, capacity),
	}
}

// Solve returns the cached result for (g, start, goal) or computes and stores it
// Results that ran out of budget are not stored
func (c *RouteCache) Solve(g *Grid, start, goal Position, opts ...Option) Result {
	key := RouteKey{Fingerprint: g.Fingerprint(), Start: start, Goal: goal}

	c.mu.Lock()
	if res, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return res.clone()
	}
	c.misses++
	c.mu.Unlock()

	res := Solve(g, start, goal, opts...)
	if res.Status == StatusBudgetExhausted {
		return res
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return res
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = res.clone()
	c.order = append(c.order, key)
	return res
}

// Len returns the number of stored results
func (c *RouteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *RouteCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// clone copies the paths so cached entries stay independent of callers
func (r Result) clone() Result {
	r.Raw = slices.Clone(r.Raw)
	r.Smooth = slices.Clone(r.Smooth)
	return r
}

// Reset drops every stored result
func (c *RouteCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order = c.order[:0]
}
