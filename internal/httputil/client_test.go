// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oci-engine/pkg/types"
)

func TestClientGet_SetsUserAgentAndHeaders(t *testing.T) {
	var gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := New(types.HTTPConfig{}, WithHTTPClient(ts.Client()))
	resp, err := c.Get(context.Background(), ts.URL, http.Header{"Accept": {"application/json"}})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientGet_NonOKIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(types.HTTPConfig{UserAgent: "test/1"}, WithHTTPClient(ts.Client()))
	resp, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClientGet_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := New(types.HTTPConfig{Timeout: 50 * time.Millisecond}, WithHTTPClient(ts.Client()))
	_, err := c.Get(context.Background(), ts.URL, nil)
	assert.Error(t, err)
}

func TestClientGetWithRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("done"))
	}))
	defer ts.Close()

	c := New(types.HTTPConfig{MaxRetries: 2}, WithHTTPClient(ts.Client()))

	resp, err := c.GetWithRetry(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", string(resp.Body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// Plain Get does not retry.
	atomic.StoreInt32(&calls, 0)
	resp, err = c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestClientGet_RateLimitedPerHost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer ts.Close()

	c := New(types.HTTPConfig{RatePerHost: 20}, WithHTTPClient(ts.Client()))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), ts.URL, nil)
		require.NoError(t, err)
	}
	// Burst of one: the second and third calls each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.1000/xyz", "10.1000/xyz"},
		{"a b", "a%20b"},
		{"x:y&z=1", "x%3Ay%26z%3D1"},
		{"é", "%C3%A9"},
		{"~_.-", "~_.-"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Quote(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, Unquote(got))
		})
	}
}
