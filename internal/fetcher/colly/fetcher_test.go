package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, robotsHits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>ua=" + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/created", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("made"))
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte("late"))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		robotsHits.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetReturnsBodyOn200(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)

	f := New(Config{UserAgent: "test-agent/1.0"}, zap.NewNop())
	body, ok := f.Get(context.Background(), srv.URL+"/ok")
	require.True(t, ok)
	assert.Contains(t, string(body), "ua=test-agent/1.0")
	assert.Zero(t, robotsHits.Load(), "robots.txt is left to the crawler")
}

func TestGetReturnsBodiesOverTenMiB(t *testing.T) {
	t.Parallel()

	page := "<html><body>" + strings.Repeat("a", 15<<20) + `<a href="/tail">tail</a></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	body, ok := New(Config{}, zap.NewNop()).Get(context.Background(), srv.URL+"/big")
	require.True(t, ok)
	assert.Len(t, body, len(page))
	assert.True(t, strings.HasSuffix(string(body), `<a href="/tail">tail</a></body></html>`))
}

func TestGetFollowsRedirects(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)

	body, ok := New(Config{}, nil).Get(context.Background(), srv.URL+"/redirect")
	require.True(t, ok)
	assert.Contains(t, string(body), "ua=")
}

func TestGetRejectsNon200(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)
	f := New(Config{}, zap.NewNop())

	for _, path := range []string{"/missing", "/created"} {
		body, ok := f.Get(context.Background(), srv.URL+path)
		assert.False(t, ok, path)
		assert.Nil(t, body, path)
	}
}

func TestGetTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	body, ok := New(Config{}, zap.NewNop()).Get(context.Background(), addr+"/gone")
	assert.False(t, ok)
	assert.Nil(t, body)
}

func TestGetHonoursTimeout(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)

	f := New(Config{Timeout: 100 * time.Millisecond}, zap.NewNop())
	start := time.Now()
	_, ok := f.Get(context.Background(), srv.URL+"/slow")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGetSleepsDelayAfterEveryRequest(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)

	delay := 150 * time.Millisecond
	f := New(Config{Delay: delay}, zap.NewNop())

	start := time.Now()
	_, ok := f.Get(context.Background(), srv.URL+"/ok")
	require.True(t, ok)
	_, ok = f.Get(context.Background(), srv.URL+"/missing")
	require.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestGetCanceledContext(t *testing.T) {
	t.Parallel()
	var robotsHits atomic.Int32
	srv := newTestServer(t, &robotsHits)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := New(Config{Delay: time.Hour}, zap.NewNop())
	start := time.Now()
	_, ok := f.Get(ctx, srv.URL+"/slow")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second, "delay is cut short by cancellation")
}

func TestSleepWithContext(t *testing.T) {
	t.Parallel()

	require.NoError(t, sleepWithContext(context.Background(), 0))
	require.NoError(t, sleepWithContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepWithContext(ctx, time.Hour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	hooks := &stubHooks{}
	var result response
	configureCollectorHooks(hooks, &result)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	hooks.onResponse(&colly.Response{StatusCode: http.StatusOK, Body: []byte("body")})
	assert.Equal(t, http.StatusOK, result.status)
	assert.Equal(t, "body", string(result.body))

	hooks.onError(nil, errors.New("boom"))
	assert.EqualError(t, result.err, "boom")
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
