package inkpress

import (
	"errors"
	"sync"
	"time"

	"github.com/calmloop/inkpress/content"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("inkpress: document not found")

// DocCache is an in-memory cache of loaded documents with TTL. The dev
// server reads through it so every request does not re-parse the content
// dir; the watcher invalidates it on rebuilds.
type DocCache struct {
	mu      sync.RWMutex
	docs    []*content.Document
	fetched time.Time
	ttl     time.Duration
	load    func() ([]*content.Document, error)
}

// NewDocCache creates a DocCache backed by the given load function.
func NewDocCache(load func() ([]*content.Document, error), ttl time.Duration) *DocCache {
	return &DocCache{load: load, ttl: ttl}
}

func (c *DocCache) valid() bool {
	return c.docs != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *DocCache) Invalidate() {
	c.mu.Lock()
	c.docs = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached documents after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *DocCache) ensureLoaded() ([]*content.Document, error) {
	c.mu.RLock()
	if c.valid() {
		docs := c.docs
		c.mu.RUnlock()
		return docs, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.docs, nil
	}
	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	c.docs = docs
	c.fetched = time.Now()
	return docs, nil
}

// List returns all documents, drafts included.
func (c *DocCache) List() ([]*content.Document, error) {
	return c.ensureLoaded()
}

// Drafts returns only draft documents.
func (c *DocCache) Drafts() ([]*content.Document, error) {
	docs, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var drafts []*content.Document
	for _, d := range docs {
		if d.Draft {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

// GetBySlug returns a single document by slug.
func (c *DocCache) GetBySlug(slug string) (*content.Document, error) {
	docs, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.Slug == slug {
			return d, nil
		}
	}
	return nil, ErrNotFound
}
