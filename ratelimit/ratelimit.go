// Package ratelimit models the rate-limit windows the Discord REST API
// advertises through X-RateLimit-* response headers.
//
// Discord throttles per "bucket": each response reports how many requests
// the current window has left and when it resets. A response may also flag a
// global limit, which pauses every request regardless of bucket. The request
// queue builds a Bucket per endpoint from each response's Snapshot and
// consults it before dispatching the next request on that endpoint.
package ratelimit

import (
	"net/http"
	"strconv"
)

// Response header names, as sent by the service.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderResetAfter = "X-RateLimit-Reset-After"
	HeaderRetryAfter = "X-RateLimit-Retry-After"
	HeaderBucket     = "X-RateLimit-Bucket"
	HeaderGlobal     = "X-RateLimit-Global"
)

// Snapshot is the rate-limit state one HTTP response reported.
type Snapshot struct {
	// Bucket is the server's opaque bucket tag.
	Bucket string

	// Limit is the total number of requests the window allows.
	Limit uint64

	// Remaining is how many requests are left in the window.
	Remaining uint64

	// ResetAfter is how many seconds until the window resets.
	ResetAfter uint64

	// RetryAfter is how many seconds to wait before a new attempt.
	// 0 when the header is absent.
	RetryAfter uint64

	// Global is true if the advertised limit applies across the whole API
	// rather than a single bucket.
	Global bool
}

// ParseHeaders extracts a Snapshot from response headers. Missing or
// malformed numeric headers read as 0.
func ParseHeaders(h http.Header) Snapshot {
	return Snapshot{
		Bucket:     h.Get(HeaderBucket),
		Limit:      parseCount(h.Get(HeaderLimit)),
		Remaining:  parseCount(h.Get(HeaderRemaining)),
		ResetAfter: parseCount(h.Get(HeaderResetAfter)),
		RetryAfter: parseCount(h.Get(HeaderRetryAfter)),
		Global:     h.Get(HeaderGlobal) == "true",
	}
}

func parseCount(s string) uint64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Bucket is the stored rate-limit window for one endpoint key. The queue
// overwrites it from the Snapshot of every response on that endpoint.
//
// Buckets are keyed by the request's endpoint path, not by the server's
// bucket tag. Keying by tag would share windows across endpoints the way the
// service intends; the per-endpoint key is conservative and may under-utilise
// shared buckets, but never exceeds them.
type Bucket struct {
	Limit      uint64
	Remaining  uint64
	ResetAfter uint64
	RetryAfter uint64

	// Timestamp is the unix time the counters above were recorded.
	Timestamp int64
}

// NewBucket builds a bucket record from a response snapshot.
func NewBucket(s Snapshot, now int64) Bucket {
	return Bucket{
		Limit:      s.Limit,
		Remaining:  s.Remaining,
		ResetAfter: s.ResetAfter,
		RetryAfter: s.RetryAfter,
		Timestamp:  now,
	}
}

// Wait returns how many seconds from Timestamp the bucket must rest before
// the next request: RetryAfter when the server set it, ResetAfter otherwise.
func (b Bucket) Wait() uint64 {
	if b.RetryAfter != 0 {
		return b.RetryAfter
	}
	return b.ResetAfter
}

// Blocked reports whether a request on this bucket must wait at unix time now.
func (b Bucket) Blocked(now int64) bool {
	if b.Remaining >= 1 {
		return false
	}
	return now <= b.Timestamp+int64(b.Wait())
}
