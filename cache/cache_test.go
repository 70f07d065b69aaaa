package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/chordbot/chord/models"
)

func newUser(id models.Snowflake, name string) *models.User {
	u := &models.User{Username: name}
	u.ID = id
	return u
}

// TestCacheStoreFindRemove covers the basic operations.
func TestCacheStoreFindRemove(t *testing.T) {
	c := New()
	u1 := newUser(1, "one")
	u2 := newUser(2, "two")

	c.Store(u1)
	c.Store(u2)
	if c.Count() != 2 {
		t.Fatalf("count = %d, want 2", c.Count())
	}

	if got := c.Find(2); got != Object(u2) {
		t.Errorf("Find(2) = %v, want u2", got)
	}
	if got := c.Find(99); got != nil {
		t.Errorf("Find(99) = %v, want nil", got)
	}

	// Store overwrites by ID.
	u1b := newUser(1, "one-b")
	c.Store(u1b)
	if c.Count() != 2 {
		t.Errorf("count after overwrite = %d, want 2", c.Count())
	}
	if got := c.Find(1); got != Object(u1b) {
		t.Errorf("Find(1) after overwrite returned the stale object")
	}

	c.Remove(u2)
	if c.Count() != 1 {
		t.Errorf("count after remove = %d, want 1", c.Count())
	}
	if c.Find(2) != nil {
		t.Error("Find(2) after remove should be nil")
	}
}

// TestGarbageCollectionGraceWindow walks scenario S6: a deleted entry stays
// findable for the 60 s grace window and is purged afterwards.
func TestGarbageCollectionGraceWindow(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1_700_000_000, 0)
	r.SetClock(func() time.Time { return now })

	for id := models.Snowflake(1); id <= 3; id++ {
		r.Users().Store(newUser(id, "u"))
	}

	if got := r.FindUser(2); got == nil || got.ID != 2 {
		t.Fatalf("FindUser(2) = %v", got)
	}

	got := r.FindUser(2)
	got.MarkDeleted(now.Unix())

	// Immediately after deletion the object is still findable.
	r.GarbageCollection()
	if r.FindUser(2) == nil {
		t.Fatal("deleted object purged inside the grace window")
	}

	// Still findable right at the window edge.
	now = now.Add(60 * time.Second)
	r.GarbageCollection()
	if r.FindUser(2) == nil {
		t.Fatal("deleted object purged at exactly 60s")
	}

	// Gone after the window.
	now = now.Add(1 * time.Second)
	r.GarbageCollection()
	if r.FindUser(2) != nil {
		t.Error("deleted object still findable after 61s")
	}
	if r.UserCount() != 2 {
		t.Errorf("user count = %d, want 2", r.UserCount())
	}
}

// TestGarbageCollectionLeavesLiveObjects verifies live entries survive sweeps.
func TestGarbageCollectionLeavesLiveObjects(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1_700_000_000, 0)
	r.SetClock(func() time.Time { return now })

	r.Guilds().Store(&models.Guild{Managed: models.Managed{ID: 10}})
	now = now.Add(24 * time.Hour)
	r.GarbageCollection()

	if r.FindGuild(10) == nil {
		t.Error("live guild was purged")
	}
}

// TestCacheConcurrentAccess hammers one cache from many goroutines and
// checks the terminal count.
func TestCacheConcurrentAccess(t *testing.T) {
	const workers = 8
	const perWorker = 500

	c := New()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			base := models.Snowflake(w * perWorker)
			for i := 0; i < perWorker; i++ {
				id := base + models.Snowflake(i)
				u := newUser(id, "c")
				c.Store(u)
				c.Find(id)
				// Remove the odd half.
				if i%2 == 1 {
					c.Remove(u)
				}
			}
		}(w)
	}
	wg.Wait()

	want := uint64(workers * perWorker / 2)
	if got := c.Count(); got != want {
		t.Errorf("terminal count = %d, want %d", got, want)
	}
}

// TestRegistryTypedFinders verifies each kind round-trips through its cache.
func TestRegistryTypedFinders(t *testing.T) {
	r := NewRegistry()

	r.Users().Store(newUser(1, "u"))
	r.Guilds().Store(&models.Guild{Managed: models.Managed{ID: 2}})
	r.Roles().Store(&models.Role{Managed: models.Managed{ID: 3}})
	r.Channels().Store(&models.Channel{Managed: models.Managed{ID: 4}})
	r.Emoji().Store(&models.Emoji{Managed: models.Managed{ID: 5}})

	if r.FindUser(1) == nil || r.FindGuild(2) == nil || r.FindRole(3) == nil ||
		r.FindChannel(4) == nil || r.FindEmoji(5) == nil {
		t.Error("typed finder returned nil for a stored object")
	}
	if r.FindUser(2) != nil {
		t.Error("FindUser should not see objects of other kinds")
	}
	if r.UserCount() != 1 || r.GuildCount() != 1 || r.RoleCount() != 1 ||
		r.ChannelCount() != 1 || r.EmojiCount() != 1 {
		t.Error("per-kind counts wrong")
	}
}

// TestDefaultRegistryHelpers verifies the package-level helpers hit the
// process default registry.
func TestDefaultRegistryHelpers(t *testing.T) {
	ResetDefault()
	defer ResetDefault()

	Default().Users().Store(newUser(7, "global"))
	if FindUser(7) == nil {
		t.Error("package-level FindUser missed the default registry")
	}
	if UserCount() != 1 {
		t.Errorf("package-level UserCount = %d, want 1", UserCount())
	}
	GarbageCollection()
	if FindUser(7) == nil {
		t.Error("GC purged a live object")
	}
}
