package cache

import (
	"sync"
	"time"

	"github.com/chordbot/chord/models"
)

// Registry holds the major object caches for one cluster. Each Cluster and
// each test instantiates its own registry; the package globals delegate to a
// separate process-level default registry.
type Registry struct {
	users    *Cache
	guilds   *Cache
	roles    *Cache
	channels *Cache
	emoji    *Cache

	// now is the clock used by GarbageCollection. Overridden in tests.
	now func() time.Time
}

// NewRegistry creates a registry with one empty cache per object kind.
func NewRegistry() *Registry {
	return &Registry{
		users:    New(),
		guilds:   New(),
		roles:    New(),
		channels: New(),
		emoji:    New(),
		now:      time.Now,
	}
}

// Users returns the user cache.
func (r *Registry) Users() *Cache { return r.users }

// Guilds returns the guild cache.
func (r *Registry) Guilds() *Cache { return r.guilds }

// Roles returns the role cache.
func (r *Registry) Roles() *Cache { return r.roles }

// Channels returns the channel cache.
func (r *Registry) Channels() *Cache { return r.channels }

// Emoji returns the emoji cache.
func (r *Registry) Emoji() *Cache { return r.emoji }

// SetClock overrides the clock used by GarbageCollection. Only for tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// GarbageCollection sweeps every cache, purging entries deleted longer than
// GracePeriod ago. Invoke periodically from an external timer.
func (r *Registry) GarbageCollection() {
	now := r.now()
	for _, c := range []*Cache{r.users, r.guilds, r.roles, r.channels, r.emoji} {
		c.sweep(now)
	}
}

// FindUser returns the cached user with the given ID, or nil.
func (r *Registry) FindUser(id models.Snowflake) *models.User {
	if obj := r.users.Find(id); obj != nil {
		return obj.(*models.User)
	}
	return nil
}

// FindGuild returns the cached guild with the given ID, or nil.
func (r *Registry) FindGuild(id models.Snowflake) *models.Guild {
	if obj := r.guilds.Find(id); obj != nil {
		return obj.(*models.Guild)
	}
	return nil
}

// FindRole returns the cached role with the given ID, or nil.
func (r *Registry) FindRole(id models.Snowflake) *models.Role {
	if obj := r.roles.Find(id); obj != nil {
		return obj.(*models.Role)
	}
	return nil
}

// FindChannel returns the cached channel with the given ID, or nil.
func (r *Registry) FindChannel(id models.Snowflake) *models.Channel {
	if obj := r.channels.Find(id); obj != nil {
		return obj.(*models.Channel)
	}
	return nil
}

// FindEmoji returns the cached emoji with the given ID, or nil.
func (r *Registry) FindEmoji(id models.Snowflake) *models.Emoji {
	if obj := r.emoji.Find(id); obj != nil {
		return obj.(*models.Emoji)
	}
	return nil
}

// UserCount returns the number of cached users.
func (r *Registry) UserCount() uint64 { return r.users.Count() }

// GuildCount returns the number of cached guilds.
func (r *Registry) GuildCount() uint64 { return r.guilds.Count() }

// RoleCount returns the number of cached roles.
func (r *Registry) RoleCount() uint64 { return r.roles.Count() }

// ChannelCount returns the number of cached channels.
func (r *Registry) ChannelCount() uint64 { return r.channels.Count() }

// EmojiCount returns the number of cached emoji.
func (r *Registry) EmojiCount() uint64 { return r.emoji.Count() }

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-level registry. Thread-safe; initialized
// exactly once.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// ResetDefault replaces the process-level registry with a fresh instance.
// Only for use in tests.
func ResetDefault() {
	defaultRegistryOnce = sync.Once{}
	defaultRegistry = nil
}

// Package-level helpers over the default registry, mirroring the per-kind
// accessors above.

func FindUser(id models.Snowflake) *models.User       { return Default().FindUser(id) }
func FindGuild(id models.Snowflake) *models.Guild     { return Default().FindGuild(id) }
func FindRole(id models.Snowflake) *models.Role       { return Default().FindRole(id) }
func FindChannel(id models.Snowflake) *models.Channel { return Default().FindChannel(id) }
func FindEmoji(id models.Snowflake) *models.Emoji     { return Default().FindEmoji(id) }

func UserCount() uint64    { return Default().UserCount() }
func GuildCount() uint64   { return Default().GuildCount() }
func RoleCount() uint64    { return Default().RoleCount() }
func ChannelCount() uint64 { return Default().ChannelCount() }
func EmojiCount() uint64   { return Default().EmojiCount() }

// GarbageCollection sweeps the default registry's caches.
func GarbageCollection() { Default().GarbageCollection() }
