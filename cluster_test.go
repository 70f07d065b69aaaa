package chord

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chordbot/chord/config"
	"github.com/chordbot/chord/logging"
	"github.com/chordbot/chord/models"
	"github.com/chordbot/chord/rest"
)

func newTestCluster(t *testing.T, base string) *Cluster {
	t.Helper()
	cfg := config.New("test-token")
	cfg.APIBase = base
	c, err := New(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// TestNewRequiresToken verifies cluster construction validates the config.
func TestNewRequiresToken(t *testing.T) {
	if _, err := New(config.New(""), logging.Nop()); err != config.ErrMissingToken {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

// TestCurrentUserCaches verifies the fetched user lands in the user cache
// before the handler runs.
func TestCurrentUserCaches(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/api/users/@me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `{"id":"77","username":"chord","bot":true}`)
	}))
	defer srv.Close()

	c := newTestCluster(t, srv.URL)
	defer c.Close()

	done := make(chan *models.User, 1)
	c.CurrentUser(func(u *models.User, rv rest.Completion) {
		if c.Caches().FindUser(77) == nil {
			t.Error("user not cached before handler ran")
		}
		done <- u
	})

	select {
	case u := <-done:
		if u == nil || u.Username != "chord" || !u.IsBot() {
			t.Errorf("user = %+v", u)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out")
	}
}

// TestCurrentUserErrorPath verifies a failing request yields a nil user and
// no cache entry.
func TestCurrentUserErrorPath(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(401)
	}))
	defer srv.Close()

	c := newTestCluster(t, srv.URL)
	defer c.Close()

	done := make(chan rest.Completion, 1)
	c.CurrentUser(func(u *models.User, rv rest.Completion) {
		if u != nil {
			t.Error("expected nil user on 401")
		}
		done <- rv
	})

	select {
	case rv := <-done:
		if rv.Status != 401 {
			t.Errorf("status = %d", rv.Status)
		}
		if c.Caches().UserCount() != 0 {
			t.Error("error response must not populate the cache")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out")
	}
}

// TestCreateMessage verifies the POST body and endpoint shape.
func TestCreateMessage(t *testing.T) {
	type sent struct {
		path, method, body string
	}
	got := make(chan sent, 1)
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		data, _ := io.ReadAll(r.Body)
		got <- sent{r.URL.Path, r.Method, string(data)}
	}))
	defer srv.Close()

	c := newTestCluster(t, srv.URL)
	defer c.Close()

	done := make(chan struct{})
	c.CreateMessage(123, "hello there", func(rv rest.Completion) { close(done) })

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out")
	}

	s := <-got
	if s.path != "/api/channels/123/messages" || s.method != "POST" {
		t.Errorf("request = %s %s", s.method, s.path)
	}
	if s.body != `{"content":"hello there"}` {
		t.Errorf("body = %s", s.body)
	}
}

// TestGetGuildCaches verifies guild fetch and ingestion.
func TestGetGuildCaches(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, `{"id":"55","name":"G","features":["PARTNERED"]}`)
	}))
	defer srv.Close()

	c := newTestCluster(t, srv.URL)
	defer c.Close()

	done := make(chan *models.Guild, 1)
	c.GetGuild(55, func(g *models.Guild, rv rest.Completion) { done <- g })

	select {
	case g := <-done:
		if g == nil || g.Name != "G" || !g.IsPartnered() {
			t.Errorf("guild = %+v", g)
		}
		if c.Caches().FindGuild(55) == nil {
			t.Error("guild not cached")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out")
	}
}
