package resource

import (
	"sync"
	"time"

	"alpha_miner/internal/viewer"
)

// ttlCache holds the last fetched resources for a fixed TTL.
// A non-positive TTL disables caching entirely.
type ttlCache struct {
	mutex     sync.Mutex
	ttl       time.Duration
	fetchedAt time.Time
	resources *viewer.Resources
	now       func() time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *ttlCache) Get() (*viewer.Resources, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.ttl <= 0 || c.resources == nil {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) > c.ttl {
		c.resources = nil
		return nil, false
	}
	return c.resources, true
}

func (c *ttlCache) Put(resources *viewer.Resources) {
	if c.ttl <= 0 {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.resources = resources
	c.fetchedAt = c.now()
}
