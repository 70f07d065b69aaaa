package rest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chordbot/chord/config"
	"github.com/chordbot/chord/logging"
	"github.com/chordbot/chord/ratelimit"
)

// blockedEndpointBackoff is how long the dispatcher sleeps before re-waking
// itself when it finds an endpoint still inside its rate-limit window.
const blockedEndpointBackoff = 50 * time.Millisecond

type completionPair struct {
	completion Completion
	request    *Request
}

// Queue schedules REST requests against the rate-limit windows the service
// advertises, and marshals results back to handlers.
//
// Two workers run per queue. The dispatcher walks pending requests, executes
// the eligible ones over HTTP and records each response's rate-limit bucket;
// the completer invokes handlers with the results. They are separate so a
// slow handler never delays network dispatch, and network latency never
// delays handlers for requests that already finished. Each worker blocks on
// its own wakeup notifier.
//
// Within one endpoint, requests execute and complete in submission order.
// Across endpoints, order is unspecified. When one endpoint's bucket is
// exhausted the dispatcher backs off and retries the whole walk shortly
// after, so an idle endpoint can be held up briefly by a limited one.
type Queue struct {
	exec *Executor
	log  *logging.Logger

	inMu    sync.Mutex
	pending map[string][]*Request

	outMu     sync.Mutex
	responses []completionPair

	// buckets is touched only by the dispatcher; no lock needed.
	buckets map[string]ratelimit.Bucket

	// Global rate-limit latch, dispatcher-only.
	globallyRatelimited bool
	globallyLimitedFor  uint64

	terminating atomic.Bool
	closeOnce   sync.Once
	wg          sync.WaitGroup

	inNotify  *notifier
	outNotify *notifier
}

// NewQueue builds a queue for the given config and starts its two workers.
// Notifier construction failures abort startup.
func NewQueue(cfg *config.Config, log *logging.Logger) (*Queue, error) {
	if log == nil {
		log = logging.Nop()
	}

	inNotify, err := newNotifier()
	if err != nil {
		return nil, err
	}
	outNotify, err := newNotifier()
	if err != nil {
		inNotify.Close()
		return nil, err
	}

	q := &Queue{
		exec:      NewExecutor(cfg, log),
		log:       log,
		pending:   make(map[string][]*Request),
		buckets:   make(map[string]ratelimit.Bucket),
		inNotify:  inNotify,
		outNotify: outNotify,
	}

	q.wg.Add(2)
	go q.dispatchLoop()
	go q.completeLoop()

	return q, nil
}

// Post hands a request to the queue, which takes ownership. Never blocks on
// network or handlers; the request's handler is invoked exactly once, later,
// on the completer worker. After Close, the request is cancelled and its
// handler runs synchronously inside Post.
func (q *Queue) Post(req *Request) {
	// The terminating check and the append share one critical section so a
	// concurrent Close either sees this request in the map and cancels it,
	// or this call sees terminating and cancels it here. Never both, never
	// neither.
	q.inMu.Lock()
	if q.terminating.Load() {
		q.inMu.Unlock()
		req.markCompleted()
		q.deliver(req, Completion{Error: ErrCanceled})
		return
	}
	q.pending[req.Endpoint] = append(q.pending[req.Endpoint], req)
	q.inMu.Unlock()
	q.inNotify.Signal()
}

// Close stops both workers. Requests already executed still reach their
// handlers; requests never executed get a completion with status 0 and the
// canceled error kind, so every posted request sees its handler called
// exactly once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.terminating.Store(true)
		q.inNotify.Close()
		q.outNotify.Close()
		q.wg.Wait()

		// The workers are gone, but Post may still race this drain, so both
		// queues are detached under their locks. The pending map stays
		// non-nil: a Post that slipped its append in before terminating was
		// set has its request cancelled here; one that arrives later sees
		// terminating under inMu and cancels itself.
		q.outMu.Lock()
		responses := q.responses
		q.responses = nil
		q.outMu.Unlock()
		for _, pair := range responses {
			q.deliver(pair.request, pair.completion)
		}

		q.inMu.Lock()
		pending := q.pending
		q.pending = make(map[string][]*Request)
		q.inMu.Unlock()
		for _, reqs := range pending {
			for _, req := range reqs {
				if req.Completed() {
					continue
				}
				req.markCompleted()
				q.deliver(req, Completion{Error: ErrCanceled})
			}
		}
	})
}

// dispatchLoop is the producer worker: one wakeup, one walk.
func (q *Queue) dispatchLoop() {
	defer q.wg.Done()

	for q.inNotify.Wait() {
		if q.terminating.Load() {
			return
		}

		if q.globallyRatelimited {
			if q.globallyLimitedFor > 0 {
				q.log.Warn().
					Uint64("seconds", q.globallyLimitedFor).
					Msg("globally rate limited, pausing all dispatch")
				time.Sleep(time.Duration(q.globallyLimitedFor) * time.Second)
				q.globallyLimitedFor = 0
			}
			q.globallyRatelimited = false
			q.inNotify.Signal()
			continue
		}

		q.dispatchPending()
		q.prunePending()
	}
}

// dispatchPending walks a snapshot of the pending map and executes every
// request whose endpoint bucket allows it. On the first blocked endpoint it
// abandons the walk, backs off, and re-signals itself.
func (q *Queue) dispatchPending() {
	snapshot := q.snapshotPending()

	for endpoint, reqs := range snapshot {
		for _, req := range reqs {
			if bucket, ok := q.buckets[endpoint]; ok && bucket.Blocked(time.Now().Unix()) {
				time.Sleep(blockedEndpointBackoff)
				q.inNotify.Signal()
				return
			}

			rv := q.exec.Run(req)

			q.buckets[endpoint] = ratelimit.NewBucket(rv.RateLimit, time.Now().Unix())
			if rv.RateLimit.Global {
				q.globallyRatelimited = true
				q.globallyLimitedFor = q.buckets[endpoint].Wait()
			}

			q.log.Debug().
				Str("method", req.Method.String()).
				Str("endpoint", endpoint).
				Int("status", rv.Status).
				Uint64("remaining", rv.RateLimit.Remaining).
				Msg("request dispatched")

			q.outMu.Lock()
			q.responses = append(q.responses, completionPair{completion: rv, request: req})
			q.outMu.Unlock()
			q.outNotify.Signal()
		}
	}
}

// snapshotPending copies the pending map under the lock so the dispatch walk
// can run without holding it.
func (q *Queue) snapshotPending() map[string][]*Request {
	q.inMu.Lock()
	defer q.inMu.Unlock()
	snapshot := make(map[string][]*Request, len(q.pending))
	for endpoint, reqs := range q.pending {
		snapshot[endpoint] = append([]*Request(nil), reqs...)
	}
	return snapshot
}

// prunePending removes executed requests from the pending map.
func (q *Queue) prunePending() {
	q.inMu.Lock()
	defer q.inMu.Unlock()
	for endpoint, reqs := range q.pending {
		kept := reqs[:0]
		for _, req := range reqs {
			if !req.Completed() {
				kept = append(kept, req)
			}
		}
		if len(kept) == 0 {
			delete(q.pending, endpoint)
		} else {
			q.pending[endpoint] = kept
		}
	}
}

// completeLoop is the consumer worker: one wakeup, one handler invocation.
func (q *Queue) completeLoop() {
	defer q.wg.Done()

	for q.outNotify.Wait() {
		if q.terminating.Load() {
			return
		}

		var pair completionPair
		var ok bool
		q.outMu.Lock()
		if len(q.responses) > 0 {
			pair = q.responses[0]
			q.responses = q.responses[1:]
			ok = true
		}
		q.outMu.Unlock()

		if ok {
			q.deliver(pair.request, pair.completion)
		}
	}
}

// deliver invokes a request's handler, containing panics so one misbehaving
// callback cannot take down the completer.
func (q *Queue) deliver(req *Request, c Completion) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().
				Str("endpoint", req.Endpoint).
				Interface("panic", r).
				Msg("completion handler panicked")
		}
	}()
	req.complete(c)
}
