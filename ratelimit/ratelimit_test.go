package ratelimit

import (
	"net/http"
	"testing"
)

// TestParseHeaders verifies the rate-limit snapshot extracted from response
// headers, including defaults for absent or malformed values.
func TestParseHeaders(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    Snapshot
	}{
		{
			name: "full set",
			headers: map[string]string{
				HeaderLimit:      "5",
				HeaderRemaining:  "4",
				HeaderResetAfter: "1",
				HeaderRetryAfter: "2",
				HeaderBucket:     "abcd1234",
				HeaderGlobal:     "true",
			},
			want: Snapshot{Bucket: "abcd1234", Limit: 5, Remaining: 4, ResetAfter: 1, RetryAfter: 2, Global: true},
		},
		{
			name:    "all absent",
			headers: map[string]string{},
			want:    Snapshot{},
		},
		{
			name: "retry-after absent reads zero",
			headers: map[string]string{
				HeaderLimit:     "10",
				HeaderRemaining: "0",
			},
			want: Snapshot{Limit: 10, Remaining: 0},
		},
		{
			name: "malformed numbers read zero",
			headers: map[string]string{
				HeaderLimit:     "not-a-number",
				HeaderRemaining: "-3",
				HeaderGlobal:    "TRUE",
			},
			want: Snapshot{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tc.headers {
				h.Set(k, v)
			}
			got := ParseHeaders(h)
			if got != tc.want {
				t.Errorf("ParseHeaders() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// TestBucketWait verifies retry-after takes precedence over reset-after.
func TestBucketWait(t *testing.T) {
	b := Bucket{ResetAfter: 5, RetryAfter: 0}
	if got := b.Wait(); got != 5 {
		t.Errorf("Wait() without retry-after = %d, want 5", got)
	}
	b.RetryAfter = 2
	if got := b.Wait(); got != 2 {
		t.Errorf("Wait() with retry-after = %d, want 2", got)
	}
}

// TestBucketBlocked verifies the window check against the recorded timestamp.
func TestBucketBlocked(t *testing.T) {
	const ts = 1_000_000
	b := Bucket{Remaining: 0, ResetAfter: 2, Timestamp: ts}

	if !b.Blocked(ts) {
		t.Error("exhausted bucket should block at its own timestamp")
	}
	if !b.Blocked(ts + 2) {
		t.Error("exhausted bucket should block until the window has fully passed")
	}
	if b.Blocked(ts + 3) {
		t.Error("exhausted bucket should unblock after the window")
	}

	b.Remaining = 1
	if b.Blocked(ts) {
		t.Error("bucket with remaining quota should never block")
	}
}
