// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes for remote lookups. Callers test with errors.Is.
var (
	// ErrNotFound means the source answered but has no such record.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited means the source kept answering 429 until retries ran out.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient means retries were exhausted on retryable failures.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent means the source answered with a non-retryable status.
	ErrPermanent = errors.New("permanent failure")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	URL        string

	// Retryable is set when the retry policy treated the status as retryable.
	Retryable bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Is classifies the status: 404 matches ErrNotFound, 429 matches
// ErrRateLimited, and any other status not marked retryable matches
// ErrPermanent.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrPermanent:
		return !e.Retryable && e.StatusCode != http.StatusNotFound && e.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// CheckStatus returns nil for 200 and a *StatusError otherwise.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	return newStatusError(resp)
}

func newStatusError(resp *http.Response) *StatusError {
	u := ""
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL.Redacted()
	}
	return &StatusError{StatusCode: resp.StatusCode, URL: u}
}
