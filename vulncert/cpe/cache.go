package cpe

import "sync"

// Cache memoizes parse results keyed by URI. The NVD feeds repeat the same URIs millions of
// times, so parse-once semantics matter; ownership of the cache stays with whoever builds an
// index from the feeds (there is deliberately no package-level instance).
type Cache struct {
	lock sync.RWMutex
	cpes map[string]CPE
}

func NewCache() *Cache {
	return &Cache{
		cpes: make(map[string]CPE),
	}
}

// Get returns the parsed record for the given URI, parsing and memoizing on first sight.
// The returned value is a copy: callers may decorate it (title, range bounds) freely.
func (c *Cache) Get(uri string) (CPE, error) {
	c.lock.RLock()
	hit, ok := c.cpes[uri]
	c.lock.RUnlock()
	if ok {
		return hit, nil
	}

	parsed, err := New(uri)
	if err != nil {
		return CPE{}, err
	}

	c.lock.Lock()
	c.cpes[uri] = parsed
	c.lock.Unlock()

	return parsed, nil
}

// Reset drops all memoized entries.
func (c *Cache) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cpes = make(map[string]CPE)
}

// Size returns the number of memoized entries.
func (c *Cache) Size() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.cpes)
}
