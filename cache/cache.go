// Package cache maintains in-memory stores of managed domain objects keyed
// by Snowflake ID, with a periodic garbage-collection sweep for objects
// flagged as deleted.
package cache

import (
	"sync"
	"time"

	"github.com/chordbot/chord/models"
)

// GracePeriod is how long a deleted object stays findable before a sweep may
// purge it. Concurrent readers that obtained a handle just before deletion
// get this long to finish with it.
const GracePeriod = 60 * time.Second

// Object is anything a Cache can hold: it has a Snowflake ID and a deletion
// timestamp consulted by the garbage collector. models.Managed implements it.
type Object interface {
	ObjectID() models.Snowflake
	DeletedUnix() int64
}

// Cache is one concurrently-accessed store of Objects.
type Cache struct {
	mu      sync.Mutex
	objects map[models.Snowflake]Object
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{objects: make(map[models.Snowflake]Object)}
}

// Store inserts or overwrites the entry for obj's ID.
func (c *Cache) Store(obj Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[obj.ObjectID()] = obj
}

// Remove erases the entry for obj's ID.
func (c *Cache) Remove(obj Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, obj.ObjectID())
}

// Find returns the entry for id, or nil.
func (c *Cache) Find(id models.Snowflake) Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects[id]
}

// Count returns the current number of entries.
func (c *Cache) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(len(c.objects))
}

// sweep purges entries flagged deleted longer than GracePeriod before now.
func (c *Cache) sweep(now time.Time) {
	cutoff := now.Add(-GracePeriod).Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, obj := range c.objects {
		if deleted := obj.DeletedUnix(); deleted > 0 && deleted < cutoff {
			delete(c.objects, id)
		}
	}
}
