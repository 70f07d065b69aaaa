package rest

import (
	"context"
	"crypto/tls"
	"io"
	nethttp "net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/chordbot/chord/config"
	"github.com/chordbot/chord/logging"
	"github.com/chordbot/chord/ratelimit"
)

// Executor performs single HTTP round-trips against the configured origin.
// It does not schedule or retry: the queue owns both, driven by the
// rate-limit metadata the executor parses out of each response.
type Executor struct {
	client *nethttp.Client
	cfg    *config.Config
	log    *logging.Logger
}

// NewExecutor builds an executor for the given config.
//
// Server certificate verification is disabled. Some systems ship badly out of
// date cert stores, and a chat bot that cannot connect at all is worse than
// one that skips verification against a pinned, well-known origin.
func NewExecutor(cfg *config.Config, log *logging.Logger) *Executor {
	tr := &nethttp.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		ForceAttemptHTTP2: true,
	}
	_ = http2.ConfigureTransport(tr)

	// retryablehttp supplies the client plumbing; RetryMax is 0 because the
	// queue reschedules from X-RateLimit-* metadata rather than blind retry.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &nethttp.Client{Transport: tr}
	retryClient.RetryMax = 0
	// The default retry policy flags 429 and 5xx responses, and once the
	// attempts are used up it turns them into a "giving up" error and drops
	// the response. Never flagging a response keeps every HTTP status, with
	// its rate-limit headers, a response rather than a transport error.
	retryClient.CheckRetry = func(context.Context, *nethttp.Response, error) (bool, error) {
		return false, nil
	}
	retryClient.Logger = nil

	return &Executor{
		client: retryClient.StandardClient(),
		cfg:    cfg,
		log:    log,
	}
}

// Run executes one request synchronously and marks it completed. Redirects
// are followed. On transport failure the completion carries status 0 and the
// classified error kind; otherwise the status, headers, rate-limit snapshot,
// and the body (suppressed for statuses >= 400).
func (e *Executor) Run(req *Request) Completion {
	rv := Completion{Error: ErrSuccess}
	defer req.markCompleted()

	url := e.cfg.APIBase + req.Endpoint
	if req.Parameters != "" {
		url = url + "/" + req.Parameters
	}

	var body io.Reader
	if req.Method == MethodPost || req.Method == MethodPut {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequest(req.Method.String(), url, body)
	if err != nil {
		rv.Error = ErrUnknown
		return rv
	}
	httpReq.Header.Set("Authorization", "Bot "+e.cfg.Token)
	httpReq.Header.Set("User-Agent", e.cfg.UserAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		rv.Error = classifyTransportError(err)
		e.log.Debug().
			Str("method", req.Method.String()).
			Str("endpoint", req.Endpoint).
			Str("kind", rv.Error.String()).
			Err(err).
			Msg("transport failure")
		return rv
	}
	defer resp.Body.Close()

	rv.Status = resp.StatusCode
	rv.Headers = make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		rv.Headers[name] = values[len(values)-1]
	}
	rv.RateLimit = ratelimit.ParseHeaders(resp.Header)

	// Callers that only check Body must not mistake an error payload for a
	// successful reply.
	if resp.StatusCode < 400 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			rv.Error = ErrRead
			return rv
		}
		rv.Body = string(data)
	}

	return rv
}
