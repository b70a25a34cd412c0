// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures requested waits instead of sleeping.
type recorder struct {
	waits []time.Duration
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func testPolicy(rec *recorder) Policy {
	return Policy{
		MaxRetries: 4,
		BaseDelay:  5 * time.Second,
		Sleep:      rec.sleep,
	}
}

// statusSequence serves the given statuses in order, repeating the last one.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func doGet(t *testing.T, ts *httptest.Server, p Policy) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	return DoWithRetry(context.Background(), ts.Client(), req, p)
}

func TestDoWithRetry_ImmediateSuccess(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusOK)
	rec := &recorder{}

	resp, err := doGet(t, ts, testPolicy(rec))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, rec.waits)
}

func TestDoWithRetry_RetriesThen200(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK)
	rec := &recorder{}

	resp, err := doGet(t, ts, testPolicy(rec))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, rec.waits)
}

func TestDoWithRetry_WaitsNonDecreasing(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusServiceUnavailable)
	rec := &recorder{}

	_, err := doGet(t, ts, testPolicy(rec))
	require.Error(t, err)

	require.Len(t, rec.waits, 4)
	for i := 1; i < len(rec.waits); i++ {
		assert.GreaterOrEqual(t, rec.waits[i], rec.waits[i-1])
	}
}

func TestDoWithRetry_ExhaustsRetries(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusTooManyRequests)
	rec := &recorder{}

	resp, err := doGet(t, ts, testPolicy(rec))
	assert.Nil(t, resp)
	require.Error(t, err)

	// 1 initial + 4 retries = 5 total calls.
	assert.Equal(t, int32(5), atomic.LoadInt32(calls))
	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestDoWithRetry_ExhaustedBadGatewayIsTransientOnly(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusBadGateway)

	_, err := doGet(t, ts, testPolicy(&recorder{}))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTransient)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrPermanent)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadGateway, serr.StatusCode)
}

func TestDoWithRetry_NotFoundIsImmediate(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusNotFound)
	rec := &recorder{}

	_, err := doGet(t, ts, testPolicy(rec))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Empty(t, rec.waits)
}

func TestDoWithRetry_PermanentStatusPassesThrough(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusInternalServerError)

	_, err := doGet(t, ts, testPolicy(&recorder{}))
	assert.ErrorIs(t, err, ErrPermanent)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDoWithRetry_PrePauseBeforeFirstAttempt(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusTooManyRequests, http.StatusOK)
	rec := &recorder{}
	p := testPolicy(rec)
	p.PrePause = 3 * time.Second

	resp, err := doGet(t, ts, p)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []time.Duration{3 * time.Second, 5 * time.Second}, rec.waits)
}

func TestDoWithRetry_OnRetryHook(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusServiceUnavailable, http.StatusOK)
	p := testPolicy(&recorder{})

	var attempts []int
	p.OnRetry = func(attempt int, wait time.Duration, cause error) {
		attempts = append(attempts, attempt)
		assert.Equal(t, 5*time.Second, wait)
		assert.Error(t, cause)
	}

	resp, err := doGet(t, ts, p)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []int{1}, attempts)
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts, _ := statusSequence(t, http.StatusTooManyRequests)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	p := Policy{MaxRetries: 4, BaseDelay: time.Second}
	_, err = DoWithRetry(ctx, ts.Client(), req, p)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetry_TransportErrorsRetryThenRaise(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("connection reset")
	var calls int

	_, err := Retry(context.Background(), testPolicy(rec), func(context.Context) (*http.Response, error) {
		calls++
		return nil, boom
	})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrTransient)
}

func TestRetry_CustomRetryable(t *testing.T) {
	ts, calls := statusSequence(t, http.StatusInternalServerError, http.StatusOK)
	p := testPolicy(&recorder{})
	p.Retryable = func(status int) bool { return status == http.StatusInternalServerError }

	resp, err := doGet(t, ts, p)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestPolicy_Backoff(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 5*time.Second, p.Backoff(0))
	assert.Equal(t, 10*time.Second, p.Backoff(1))
	assert.Equal(t, 40*time.Second, p.Backoff(3))
}

func TestStatusError_Is(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		want      error
		notWant   error
	}{
		{http.StatusNotFound, false, ErrNotFound, ErrPermanent},
		{http.StatusTooManyRequests, true, ErrRateLimited, ErrPermanent},
		{http.StatusBadRequest, false, ErrPermanent, ErrNotFound},
		{http.StatusServiceUnavailable, true, nil, ErrPermanent},
	}
	for _, tt := range tests {
		err := &StatusError{StatusCode: tt.status, Retryable: tt.retryable}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected match for %v", tt.status, tt.want)
		}
		if errors.Is(err, tt.notWant) {
			t.Errorf("status %d: unexpected match for %v", tt.status, tt.notWant)
		}
	}
}
