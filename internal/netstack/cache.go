package netstack

import (
	"sync"
	"time"
)

// CachedResponse is one entry in the response cache.
type CachedResponse struct {
	Status     int
	Headers    map[string]string
	Body       []byte
	CSP        *CSP
	ExpiresAt  time.Time
}

// ResponseCache is an in-memory, LRU+TTL response cache: an
// access-order slice for LRU eviction and lazy expiry checked on
// lookup. It never touches disk; all state is in-memory only.
type ResponseCache struct {
	mu          sync.Mutex
	maxEntries  int
	entries     map[string]*CachedResponse
	accessOrder []string
}

// NewResponseCache creates a cache holding at most maxEntries live entries
// (0 means unbounded; eviction then only happens via expiry).
func NewResponseCache(maxEntries int) *ResponseCache {
	return &ResponseCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*CachedResponse),
	}
}

// Set stores a response if it is cacheable: headers carry max-age=N and do
// not carry no-store.
func (c *ResponseCache) Set(url string, resp *CachedResponse, maxAge time.Duration, noStore bool) {
	if noStore || maxAge <= 0 {
		return
	}
	resp.ExpiresAt = time.Now().Add(maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; !exists && c.maxEntries > 0 {
		for len(c.entries) >= c.maxEntries && len(c.accessOrder) > 0 {
			oldest := c.accessOrder[0]
			c.accessOrder = c.accessOrder[1:]
			delete(c.entries, oldest)
		}
	}
	c.removeFromOrder(url)
	c.entries[url] = resp
	c.accessOrder = append(c.accessOrder, url)
}

// Get looks up url, evicting it lazily if already expired. Never returns
// an entry whose ExpiresAt has passed.
func (c *ResponseCache) Get(url string) (*CachedResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(c.entries, url)
		c.removeFromOrder(url)
		return nil, false
	}
	c.removeFromOrder(url)
	c.accessOrder = append(c.accessOrder, url)
	return entry, true
}

func (c *ResponseCache) removeFromOrder(key string) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			return
		}
	}
}
