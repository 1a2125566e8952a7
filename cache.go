package blog

import (
	"database/sql"
	"sync"
	"time"

	"github.com/vedran/blog/content"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = sql.ErrNoRows

// EntryCache is an in-memory, TTL bound copy of the stored entries.
type EntryCache struct {
	mu      sync.RWMutex
	coll    *content.Collection
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewEntryCache creates an EntryCache backed by the given Store.
func NewEntryCache(s *Store, ttl time.Duration) *EntryCache {
	return &EntryCache{store: s, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.coll != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.coll = nil
	c.mu.Unlock()
}

func (c *EntryCache) load() error {
	if c.valid() {
		return nil
	}
	entries, err := c.store.ListEntries()
	if err != nil {
		return err
	}
	c.coll = content.NewCollection(entries)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached collection after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *EntryCache) ensureLoaded() (*content.Collection, error) {
	c.mu.RLock()
	if c.valid() {
		coll := c.coll
		c.mu.RUnlock()
		return coll, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.coll, nil
}

// ListEntries returns all entries, newest first.
func (c *EntryCache) ListEntries() ([]content.Entry, error) {
	coll, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return coll.Entries(), nil
}

// GetEntry returns an entry and its neighbours.
func (c *EntryCache) GetEntry(slug string) (content.Entry, content.Navigation, error) {
	coll, err := c.ensureLoaded()
	if err != nil {
		return content.Entry{}, content.Navigation{}, err
	}
	e, ok := coll.Get(slug)
	if !ok {
		return content.Entry{}, content.Navigation{}, ErrNotFound
	}
	return e, coll.Navigation(slug), nil
}
