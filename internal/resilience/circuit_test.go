package resilience

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensOnFailureRatio(t *testing.T) {
	b := NewBreaker(4, 0.5, time.Minute)
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.Report(true)
	}
	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.Report(false)
	}
	assert.False(t, b.Allow(), "breaker should reject once half of requests failed")
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	require.True(t, b.Allow())
	b.Report(false)
	require.False(t, b.Allow())

	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow(), "cool-off elapsed, probe should pass")
	b.Report(true)
	assert.True(t, b.Allow(), "successful probe closes the breaker")
}

func TestBreakerHalfOpenReopens(t *testing.T) {
	b := NewBreaker(1, 0.5, 10*time.Millisecond)
	require.True(t, b.Allow())
	b.Report(false)
	time.Sleep(15 * time.Millisecond)
	require.True(t, b.Allow())
	b.Report(false)
	assert.False(t, b.Allow(), "failed probe reopens the breaker")
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		Breaker:     NewBreaker(10, 0.9, time.Minute),
		BaseBackoff: time.Millisecond,
		MaxAttempts: 3,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClientOpenBreakerShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBreaker(1, 0.5, time.Minute)
	cl := HTTPClient{Client: srv.Client(), Breaker: b, BaseBackoff: time.Millisecond, MaxAttempts: 1}

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = cl.Do(context.Background(), req)
	require.Error(t, err)

	_, err = cl.Do(context.Background(), req)
	assert.ErrorIs(t, err, ErrOpenCircuit)
	assert.Equal(t, int32(1), calls.Load(), "second call must not reach the server")
}
