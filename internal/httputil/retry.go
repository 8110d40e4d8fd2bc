// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by API clients: request
// pacing and bounded retry of transient gateway failures.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// gateway failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// Pacer blocks until the next request may be sent.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RetryOptions configures DoWithRetry. The zero value retries up to 3 times
// without pacing.
type RetryOptions struct {
	// MaxRetries bounds the retries after the first attempt. Zero selects the
	// default (3); a negative value disables retries.
	MaxRetries int

	// Pacer, when set, is waited on before every attempt.
	Pacer Pacer

	// OnRetry is called before sleeping with the 1-based retry number and
	// the status that triggered it.
	OnRetry func(attempt, status int, backoff time.Duration)
}

// Retryable reports whether status is a transient gateway failure
// (503 Service Unavailable, 504 Gateway Timeout). Rate limiting (429) and
// every other status are returned to the caller unchanged.
func Retryable(status int) bool {
	return status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
}

// DoWithRetry executes an HTTP request and retries on 503/504 with
// exponential backoff starting at RetryBaseDelay and doubling each attempt.
//
// Transport errors are returned immediately. On each retryable response the
// body is drained and closed before sleeping. If the context is cancelled
// while waiting the function returns ctx.Err(). After exhausting retries the
// last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, opts RetryOptions) (*http.Response, error) {
	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		if opts.Pacer != nil {
			if err := opts.Pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, resp.StatusCode, backoff)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
