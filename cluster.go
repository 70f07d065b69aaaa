// Package chord is a client library for the Discord REST API. A Cluster owns
// the rate-limited request queue, the object caches and the credentials, and
// exposes typed helpers over the raw request pipeline.
package chord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chordbot/chord/cache"
	"github.com/chordbot/chord/config"
	"github.com/chordbot/chord/logging"
	"github.com/chordbot/chord/models"
	"github.com/chordbot/chord/rest"
)

// gcInterval is how often RunGC sweeps the caches.
const gcInterval = 60 * time.Second

// Cluster is the top-level handle. One per bot process is typical.
type Cluster struct {
	cfg    *config.Config
	log    *logging.Logger
	queue  *rest.Queue
	caches *cache.Registry
}

// New creates a cluster from a config, starting the request queue workers.
func New(cfg *config.Config, log *logging.Logger) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewDefault()
	}
	queue, err := rest.NewQueue(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("start request queue: %w", err)
	}
	return &Cluster{
		cfg:    cfg,
		log:    log,
		queue:  queue,
		caches: cache.NewRegistry(),
	}, nil
}

// Close stops the request queue. Pending requests receive a canceled
// completion; handlers already in flight finish first.
func (c *Cluster) Close() {
	c.queue.Close()
}

// Caches returns the cluster's object cache registry.
func (c *Cluster) Caches() *cache.Registry {
	return c.caches
}

// Post submits a raw request. Ownership transfers to the queue.
func (c *Cluster) Post(req *rest.Request) {
	c.queue.Post(req)
}

// RunGC sweeps the caches every minute until ctx is cancelled. Run it in its
// own goroutine.
func (c *Cluster) RunGC(ctx context.Context) {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.caches.GarbageCollection()
		}
	}
}

// CurrentUser fetches the bot's own user record. On success the user is
// stored in the user cache before the handler runs.
func (c *Cluster) CurrentUser(handler func(*models.User, rest.Completion)) {
	c.Post(rest.NewRequest("/api/users", "@me", rest.MethodGet, "", func(rv rest.Completion) {
		var user *models.User
		if rv.Status == 200 {
			user = &models.User{}
			if err := user.FillFromJSON([]byte(rv.Body)); err != nil {
				c.log.Warnf("decode current user: %v", err)
				user = nil
			} else {
				c.caches.Users().Store(user)
			}
		}
		if handler != nil {
			handler(user, rv)
		}
	}))
}

// GetUser fetches a user by ID and caches it on success.
func (c *Cluster) GetUser(id models.Snowflake, handler func(*models.User, rest.Completion)) {
	c.Post(rest.NewRequest("/api/users", id.String(), rest.MethodGet, "", func(rv rest.Completion) {
		var user *models.User
		if rv.Status == 200 {
			user = &models.User{}
			if err := user.FillFromJSON([]byte(rv.Body)); err != nil {
				c.log.Warnf("decode user %s: %v", id, err)
				user = nil
			} else {
				c.caches.Users().Store(user)
			}
		}
		if handler != nil {
			handler(user, rv)
		}
	}))
}

// GetGuild fetches a guild by ID and caches it on success.
func (c *Cluster) GetGuild(id models.Snowflake, handler func(*models.Guild, rest.Completion)) {
	c.Post(rest.NewRequest("/api/guilds", id.String(), rest.MethodGet, "", func(rv rest.Completion) {
		var guild *models.Guild
		if rv.Status == 200 {
			guild = &models.Guild{}
			if err := guild.FillFromJSON([]byte(rv.Body)); err != nil {
				c.log.Warnf("decode guild %s: %v", id, err)
				guild = nil
			} else {
				c.caches.Guilds().Store(guild)
			}
		}
		if handler != nil {
			handler(guild, rv)
		}
	}))
}

// GetChannel fetches a channel by ID and caches it on success.
func (c *Cluster) GetChannel(id models.Snowflake, handler func(*models.Channel, rest.Completion)) {
	c.Post(rest.NewRequest("/api/channels", id.String(), rest.MethodGet, "", func(rv rest.Completion) {
		var channel *models.Channel
		if rv.Status == 200 {
			channel = &models.Channel{}
			if err := channel.FillFromJSON([]byte(rv.Body)); err != nil {
				c.log.Warnf("decode channel %s: %v", id, err)
				channel = nil
			} else {
				c.caches.Channels().Store(channel)
			}
		}
		if handler != nil {
			handler(channel, rv)
		}
	}))
}

// CreateMessage posts a message to a channel.
func (c *Cluster) CreateMessage(channelID models.Snowflake, content string, handler rest.Handler) {
	body, _ := json.Marshal(map[string]string{"content": content})
	c.Post(rest.NewRequest(
		"/api/channels",
		channelID.String()+"/messages",
		rest.MethodPost,
		string(body),
		handler,
	))
}

// DeleteMessage removes a message from a channel.
func (c *Cluster) DeleteMessage(channelID, messageID models.Snowflake, handler rest.Handler) {
	c.Post(rest.NewRequest(
		"/api/channels",
		channelID.String()+"/messages/"+messageID.String(),
		rest.MethodDelete,
		"",
		handler,
	))
}
