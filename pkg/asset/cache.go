package asset

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chazu/timberframe/pkg/part"
)

// DefaultCacheSize holds every role's template with room for overrides.
const DefaultCacheSize = 32

// Cache is a Store that remembers resolved templates. Failed resolutions are
// not cached.
type Cache struct {
	next  Store
	cache *lru.Cache[part.Identifier, *part.Template]
}

// NewCache wraps next with an LRU of the given size. size <= 0 selects
// DefaultCacheSize.
func NewCache(next Store, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[part.Identifier, *part.Template](size)
	if err != nil {
		return nil, err
	}
	return &Cache{next: next, cache: c}, nil
}

// Resolve implements Store.
func (c *Cache) Resolve(ctx context.Context, id part.Identifier) (*part.Template, error) {
	if t, ok := c.cache.Get(id); ok {
		return t, nil
	}
	t, err := c.next.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, t)
	return t, nil
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached template.
func (c *Cache) Purge() {
	c.cache.Purge()
}
