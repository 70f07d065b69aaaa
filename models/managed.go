package models

import "sync/atomic"

// Managed is the base of every cacheable object. It carries the object's
// Snowflake ID and a deletion timestamp used by the cache garbage collector:
// zero means live, nonzero is the unix time at which the object was flagged
// for removal.
type Managed struct {
	ID        Snowflake
	deletedAt atomic.Int64
}

// ObjectID returns the object's Snowflake ID.
func (m *Managed) ObjectID() Snowflake {
	return m.ID
}

// DeletedUnix returns the unix time the object was flagged deleted, or 0 if
// it is live.
func (m *Managed) DeletedUnix() int64 {
	return m.deletedAt.Load()
}

// MarkDeleted flags the object for removal by the next garbage collection
// sweep that runs after the grace window expires.
func (m *Managed) MarkDeleted(unix int64) {
	m.deletedAt.Store(unix)
}
