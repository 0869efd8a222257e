// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for remote collaborators.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/recipe-engine/internal/log"
)

// RetryBaseDelay is the first backoff step after a throttled response.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 250 * time.Millisecond

// maxRetryAfter caps a server-provided Retry-After hint.
const maxRetryAfter = 30 * time.Second

// retryable reports whether status signals a transient overload.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry sends req built from body and retries on HTTP 429 and 503
// with exponential backoff (RetryBaseDelay, doubled each attempt). A
// Retry-After header given in seconds replaces the computed delay.
//
// The body is replayed from memory on every attempt. A negative maxRetries
// disables retries. Cancelling ctx during a wait returns ctx.Err(). After
// the last retry the final throttled response is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, body []byte, maxRetries int) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if body != nil {
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Debug(ctx, "remote throttled, retrying",
			"url", req.URL.Redacted(), "status", resp.StatusCode,
			"wait", wait, "attempt", attempt+1, "max", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryAfter)
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
