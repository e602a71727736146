// Package cache keeps query results on the client, keyed by the query that
// produced them. Entries never expire; they are replaced by a refetch or
// patched by the controller after a mutation.
package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/Makepad-fr/checklist/internal/model"
)

type Cache struct {
	store *gocache.Cache
}

func New() *Cache {
	return &Cache{store: gocache.New(gocache.NoExpiration, 0)}
}

// ReadQuery returns a copy of the todos stored under key.
func (c *Cache) ReadQuery(key string) ([]model.Todo, bool) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	todos, ok := v.([]model.Todo)
	if !ok {
		return nil, false
	}
	return clone(todos), true
}

// WriteQuery replaces the todos stored under key.
func (c *Cache) WriteQuery(key string, todos []model.Todo) {
	c.store.Set(key, clone(todos), gocache.NoExpiration)
}

// UpdateQuery applies fn to the todos under key and stores the result.
// It reports false, and leaves the cache alone, when key is not cached.
func (c *Cache) UpdateQuery(key string, fn func([]model.Todo) []model.Todo) bool {
	todos, ok := c.ReadQuery(key)
	if !ok {
		return false
	}
	c.WriteQuery(key, fn(todos))
	return true
}

func (c *Cache) Evict(key string) {
	c.store.Delete(key)
}

func clone(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	return out
}
