package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frcmap/season-map/internal/store"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func noSleep(context.Context, time.Duration) error { return nil }

func get(t *testing.T, c *http.Client, url string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNewClient_UserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := NewClient(Options{})
	get(t, c, srv.URL, nil)
	assert.Equal(t, DefaultUserAgent, ua)

	get(t, c, srv.URL, map[string]string{"User-Agent": "custom"})
	assert.Equal(t, "custom", ua)
}

func TestCache_HitSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["frc254"]`))
	}))
	defer srv.Close()

	c := NewClient(Options{Cache: newTestStore(t), CacheTTL: time.Hour})

	resp, body := get(t, c, srv.URL+"/event/2025casj/teams/keys", nil)
	assert.Equal(t, `["frc254"]`, body)
	assert.Empty(t, resp.Header.Get(CacheHeader))

	resp, body = get(t, c, srv.URL+"/event/2025casj/teams/keys", nil)
	assert.Equal(t, `["frc254"]`, body)
	assert.Equal(t, "HIT", resp.Header.Get(CacheHeader))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int32(1), hits.Load())
}

func TestCache_KeyIncludesCredentials(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(r.Header.Get("X-TBA-Auth-Key")))
	}))
	defer srv.Close()

	c := NewClient(Options{Cache: newTestStore(t)})

	_, a := get(t, c, srv.URL, map[string]string{"X-TBA-Auth-Key": "a"})
	_, b := get(t, c, srv.URL, map[string]string{"X-TBA-Auth-Key": "b"})
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCache_SkipsUncacheable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no-store", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "private, no-store")
			_, _ = w.Write([]byte("x"))
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			c := NewClient(Options{Cache: newTestStore(t)})
			get(t, c, srv.URL, nil)
			get(t, c, srv.URL, nil)
			assert.Equal(t, int32(2), hits.Load())
		})
	}
}

func TestCache_PostBypasses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Options{Cache: newTestStore(t)})
	for range 2 {
		resp, err := c.Post(srv.URL, "text/plain", strings.NewReader("x"))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetry_TransientStatusThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rt := newRetryTransport(http.DefaultTransport, RetryConfig{MaxAttempts: 3})
	rt.sleep = noSleep

	resp, body := get(t, &http.Client{Transport: rt}, srv.URL, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_ExhaustedReturnsLastResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rt := newRetryTransport(http.DefaultTransport, RetryConfig{MaxAttempts: 2})
	rt.sleep = noSleep

	resp, _ := get(t, &http.Client{Transport: rt}, srv.URL, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetry_PermanentStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rt := newRetryTransport(http.DefaultTransport, RetryConfig{MaxAttempts: 5})
	rt.sleep = noSleep

	resp, _ := get(t, &http.Client{Transport: rt}, srv.URL, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_NetworkErrors(t *testing.T) {
	var calls int
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, syscall.ECONNRESET
		}
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("ok")), Header: http.Header{}}, nil
	})
	rt := newRetryTransport(base, RetryConfig{MaxAttempts: 3})
	rt.sleep = noSleep

	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2, calls)

	calls = 0
	perm := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("unsupported protocol scheme")
	})
	rt = newRetryTransport(perm, RetryConfig{MaxAttempts: 3})
	rt.sleep = noSleep
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ReplaysBody(t *testing.T) {
	var bodies []string
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		status := http.StatusBadGateway
		if len(bodies) == 2 {
			status = http.StatusOK
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	})
	rt := newRetryTransport(base, RetryConfig{MaxAttempts: 3})
	rt.sleep = noSleep

	req := httptest.NewRequest(http.MethodPost, "http://example.test/", strings.NewReader("payload"))
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"payload", "payload"}, bodies)
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}.withDefaults()
	cfg.JitterFraction = 0

	assert.Equal(t, 100*time.Millisecond, cfg.backoff(0))
	assert.Equal(t, 200*time.Millisecond, cfg.backoff(1))
	assert.Equal(t, 400*time.Millisecond, cfg.backoff(2))
	assert.Equal(t, time.Second, cfg.backoff(10))

	cfg.JitterFraction = 0.25
	for range 50 {
		d := cfg.backoff(1)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestRateLimit_HonoursContext(t *testing.T) {
	var calls int
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: http.Header{}}, nil
	})
	rt := newRateLimitTransport(base, map[string]float64{"slow.test": 0.001, "off.test": 0})

	req := httptest.NewRequest(http.MethodGet, "http://slow.test/", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rt.RoundTrip(req.WithContext(ctx))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	// Unlimited hosts pass straight through.
	for range 5 {
		_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://other.test/", nil))
		require.NoError(t, err)
	}
	assert.Equal(t, 6, calls)
	assert.NotContains(t, rt.limiters, "off.test")
}

func TestIsTransient(t *testing.T) {
	assert.False(t, isTransient(nil))
	assert.True(t, isTransient(syscall.ECONNREFUSED))
	assert.True(t, isTransient(errors.New("read tcp: i/o timeout")))
	assert.False(t, isTransient(errors.New("x509: certificate signed by unknown authority")))
	assert.True(t, isTransientStatus(503))
	assert.False(t, isTransientStatus(404))
}
