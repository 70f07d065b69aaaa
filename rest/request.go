// Package rest implements the rate-limited REST request pipeline: a request
// queue that schedules requests against per-endpoint and global rate-limit
// windows, an HTTP executor that performs single round-trips and parses
// rate-limit metadata, and the URL-encoding utility the endpoints use.
package rest

import (
	"sync/atomic"

	"github.com/chordbot/chord/ratelimit"
)

// Method is the HTTP method of a Request.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
)

// String returns the wire form of the method.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodPatch:
		return "PATCH"
	case MethodDelete:
		return "DELETE"
	default:
		return "GET"
	}
}

// Completion is the result of one request: the HTTP status and body when a
// response was obtained, the transport error kind when not, and the
// rate-limit snapshot parsed from the response headers.
//
// Status is 0 if the transport failed; Error is ErrSuccess whenever a status
// was obtained, even for statuses >= 400, except that a failure while reading
// the body reports ErrRead alongside the status. Body is empty for statuses
// >= 400.
type Completion struct {
	Status    int
	Error     TransportError
	Headers   map[string]string
	Body      string
	RateLimit ratelimit.Snapshot
}

// Handler receives a request's Completion. Handlers run asynchronously on the
// queue's completer worker, serialised and in submission order per endpoint.
// Once the queue is closing, handlers run on the goroutine calling Close (for
// requests still queued) or Post (for requests posted after Close).
type Handler func(Completion)

// Request describes one REST call. Construct with NewRequest and hand it to
// Queue.Post, which takes ownership; the handler is invoked exactly once.
type Request struct {
	// Endpoint is the path prefix, e.g. "/api/guilds". It is also the
	// rate-limit grouping key.
	Endpoint string

	// Parameters is the path tail appended after the endpoint, e.g. an ID
	// or subpath. May be empty.
	Parameters string

	// Method is the HTTP method.
	Method Method

	// Body is the request body, sent only by POST and PUT.
	Body string

	handler   Handler
	completed atomic.Bool
}

// NewRequest builds a request descriptor. body is ignored for methods other
// than POST and PUT.
func NewRequest(endpoint, parameters string, method Method, body string, handler Handler) *Request {
	return &Request{
		Endpoint:   endpoint,
		Parameters: parameters,
		Method:     method,
		Body:       body,
		handler:    handler,
	}
}

// Completed reports whether the request has been executed (or cancelled).
func (r *Request) Completed() bool {
	return r.completed.Load()
}

// markCompleted flips the completed flag. Called by the executor after the
// round-trip and by the queue when cancelling at shutdown.
func (r *Request) markCompleted() {
	r.completed.Store(true)
}

// complete invokes the handler if and only if the request has been completed.
func (r *Request) complete(c Completion) {
	if r.Completed() && r.handler != nil {
		r.handler(c)
	}
}
