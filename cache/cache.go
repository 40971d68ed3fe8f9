package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/statuswatch/models"
)

// entry holds a cached preview with its creation timestamp.
type entry struct {
	preview   *models.PreviewResponse
	createdAt time.Time
}

// Cache is a small in-memory cache for page previews.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a Cache holding at most maxEntries previews. A background
// goroutine evicts entries older than one hour every 5 minutes until Close.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        time.Hour,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop(5 * time.Minute)
	return c
}

// Key derives a cache key from a page URL. Scheme and host case are ignored.
func Key(url string) string {
	normalized := url
	if i := strings.Index(url, "://"); i >= 0 {
		rest := url[i+3:]
		host, path, _ := strings.Cut(rest, "/")
		normalized = strings.ToLower(url[:i]) + "://" + strings.ToLower(host)
		if path != "" || strings.HasSuffix(rest, "/") {
			normalized += "/" + path
		}
	}
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

// Get returns a copy of the cached preview if it is younger than maxAgeMs.
// If maxAgeMs <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAgeMs int) (*models.PreviewResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}

	cp := *e.preview
	return &cp, true
}

// Set stores a copy of p. If the cache is full, an arbitrary entry is
// evicted to make room.
func (c *Cache) Set(key string, p *models.PreviewResponse) {
	cp := *p

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = &entry{preview: &cp, createdAt: c.now()}
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
