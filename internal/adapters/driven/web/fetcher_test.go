package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTransport records requests and never touches the network.
type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, context.Canceled
}

func newTestFetcher(cfg Config) *Fetcher {
	return New(cfg, &http.Client{})
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchOne_BinaryExtensionRejectedWithoutRequest(t *testing.T) {
	transport := &countingTransport{}
	f := New(Config{}, &http.Client{Transport: transport})

	for _, u := range []string{
		"example.com/report.pdf",
		"https://example.com/photo.JPEG",
		"http://example.com/archive.tar",
		"example.com/deck.pptx",
		"example.com/data.xls",
	} {
		text, ok := f.FetchOne(context.Background(), u)
		assert.False(t, ok, u)
		assert.Empty(t, text, u)
	}
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestFetchOne_VisibleText(t *testing.T) {
	var gotUA string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><nav>Menu</nav><p>Paris is the capital of France.</p>
<script>track()</script><footer>(c)</footer></body></html>`))
	})

	text, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL+"/wiki/Paris")

	require.True(t, ok)
	assert.Equal(t, "Paris is the capital of France.", text)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchOne_PlainText(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello\n\n  world"))
	})

	text, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL)

	require.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestFetchOne_RejectsContentType(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"a":1}`))
	})

	_, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL+"/api")

	assert.False(t, ok)
}

func TestFetchOne_HTTPError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL)

	assert.False(t, ok)
}

func TestFetchOne_TruncatesBody(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 100) + " " + strings.Repeat("b", 100)))
	})

	text, ok := newTestFetcher(Config{MaxBytes: 50}).FetchOne(context.Background(), srv.URL)

	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 50), text)
}

func TestFetchOne_RequestTimeout(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, ok := newTestFetcher(Config{RequestTimeout: 50 * time.Millisecond}).FetchOne(context.Background(), srv.URL)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchOne_NoVisibleText(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><script>x()</script></head><body> </body></html>"))
	})

	_, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL)

	assert.False(t, ok)
}

func TestFetchOne_Latin1Charset(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>caf\xe9</p>"))
	})

	text, ok := newTestFetcher(Config{}).FetchOne(context.Background(), srv.URL)

	require.True(t, ok)
	assert.Equal(t, "café", text)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/a  ", "https://example.com/a"},
		{"http://example.com", "http://example.com"},
		{"HTTPS://example.com", "HTTPS://example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in))
	}
}

func TestIsBinaryURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/report.pdf", true},
		{"https://example.com/img.webp", true},
		{"https://example.com/song.mp3?x=1", true},
		{"https://example.com/article", false},
		{"https://example.com/page.html", false},
		{"https://example.com/pdf-guide", false},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, IsBinaryURL(u), tt.raw)
	}
}
