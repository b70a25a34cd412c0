// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the error classes and the retrying request
// primitive shared by the remote metadata sources.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Policy parameterizes Retry. The zero value makes a single attempt with no
// pauses and treats 429, 502 and 503 as retryable.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the backoff unit; retry n waits BaseDelay * 2^n.
	BaseDelay time.Duration

	// PrePause is slept once before the first attempt.
	PrePause time.Duration

	// Retryable reports whether a status code is worth retrying.
	// Nil uses DefaultRetryable.
	Retryable func(status int) bool

	// Sleep waits for d or until ctx is done. Nil uses SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, wait time.Duration, cause error)
}

// DefaultPolicy returns the Semantic Scholar policy: 4 retries, 5 s base
// delay, 3 s pause before the first attempt.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 4,
		BaseDelay:  5 * time.Second,
		PrePause:   3 * time.Second,
	}
}

// DefaultRetryable accepts 429, 502 and 503.
func DefaultRetryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// SleepContext waits for d, returning ctx.Err() if ctx ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff returns the wait before retry number attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * p.BaseDelay
}

// Retry runs op until it yields a 200 response or the policy gives up.
//
// A 200 response is returned open for the caller to read and close. A 404
// returns an error matching ErrNotFound without retrying. Retryable statuses
// and transport errors wait Backoff(attempt) and try again; once retries are
// exhausted the error matches ErrTransient (and ErrRateLimited when the last
// status was 429). Any other status returns a *StatusError matching
// ErrPermanent. Bodies of rejected responses are drained and closed.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	if p.PrePause > 0 {
		if err := sleep(ctx, p.PrePause); err != nil {
			return nil, err
		}
	}

	var cause error
	for attempt := 0; ; attempt++ {
		resp, err := op(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cause = err
		} else {
			if resp.StatusCode == http.StatusOK {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			serr := newStatusError(resp)
			if resp.StatusCode == http.StatusNotFound || !retryable(resp.StatusCode) {
				return nil, serr
			}
			serr.Retryable = true
			cause = serr
		}

		if attempt >= p.MaxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrTransient, attempt+1, cause)
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, cause)
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// DoWithRetry executes req with client under policy p. The request is cloned
// for every attempt, so it must not carry a body.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	return Retry(ctx, p, func(ctx context.Context) (*http.Response, error) {
		return client.Do(req.Clone(ctx))
	})
}
