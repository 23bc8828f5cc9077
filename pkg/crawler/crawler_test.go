package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/linkscout/internal/models"
)

func testOptions() Options {
	return Options{
		UserAgent:   "linkscout-test",
		Timeout:     5 * time.Second,
		Parallelism: 4,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<html><body><form id="commentform"></form></body></html>`))
		case "/other":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body>other</body></html>`))
		case "/feed":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		case "/challenge":
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("Cf-Mitigated", "challenge")
			w.Write([]byte(`<html>Just a moment...</html>`))
		case "/ua":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(r.UserAgent()))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type pageRecorder struct {
	mu    sync.Mutex
	pages []models.FetchedPage
}

func (p *pageRecorder) handle(page models.FetchedPage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, page)
}

func (p *pageRecorder) urls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.pages))
	for _, page := range p.pages {
		out = append(out, page.URL)
	}
	sort.Strings(out)
	return out
}

func TestDispatchFetchesHTMLPages(t *testing.T) {
	server := newTestServer(t)

	c, err := New(context.Background(), testOptions(), nil)
	require.NoError(t, err)

	rec := &pageRecorder{}
	require.NoError(t, c.Dispatch(server.URL+"/post", rec.handle))
	require.NoError(t, c.Dispatch(server.URL+"/other", rec.handle))
	c.Wait()

	assert.Equal(t, []string{server.URL + "/other", server.URL + "/post"}, rec.urls())
	for _, page := range rec.pages {
		if page.URL == server.URL+"/post" {
			assert.Contains(t, string(page.Body), `id="commentform"`)
		}
	}

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Dispatched)
	assert.Equal(t, int64(2), stats.Fetched)
	assert.Zero(t, stats.Failed)
}

func TestDispatchSkipsFailuresAndNonHTML(t *testing.T) {
	server := newTestServer(t)

	c, err := New(context.Background(), testOptions(), nil)
	require.NoError(t, err)

	rec := &pageRecorder{}
	require.NoError(t, c.Dispatch(server.URL+"/missing", rec.handle))
	require.NoError(t, c.Dispatch(server.URL+"/feed", rec.handle))
	require.NoError(t, c.Dispatch(server.URL+"/challenge", rec.handle))
	c.Wait()

	assert.Empty(t, rec.urls())
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.Skipped)
	assert.Zero(t, stats.Fetched)
}

func TestDispatchSameURLTwice(t *testing.T) {
	server := newTestServer(t)

	c, err := New(context.Background(), testOptions(), nil)
	require.NoError(t, err)

	rec := &pageRecorder{}
	require.NoError(t, c.Dispatch(server.URL+"/post", rec.handle))
	require.NoError(t, c.Dispatch(server.URL+"/post", rec.handle))
	c.Wait()

	assert.Len(t, rec.urls(), 2)
}

func TestDispatchRejectsUnsupportedURLs(t *testing.T) {
	c, err := New(context.Background(), testOptions(), nil)
	require.NoError(t, err)

	for _, u := range []string{
		"ftp://example.com/file",
		"mailto:someone@example.com",
		"https://example.com/whitepaper.PDF",
		"not a url",
		"",
	} {
		err := c.Dispatch(u, func(models.FetchedPage) { t.Errorf("unexpected fetch of %q", u) })
		assert.ErrorIs(t, err, ErrUnsupportedURL, u)
	}
	c.Wait()
}

func TestDispatchUserAgent(t *testing.T) {
	server := newTestServer(t)

	c, err := New(context.Background(), testOptions(), nil)
	require.NoError(t, err)

	rec := &pageRecorder{}
	require.NoError(t, c.Dispatch(server.URL+"/ua", rec.handle))
	c.Wait()
	require.Len(t, rec.pages, 1)
	assert.Equal(t, "linkscout-test", string(rec.pages[0].Body))

	opts := testOptions()
	opts.UseRandomUserAgent = true
	c, err = New(context.Background(), opts, nil)
	require.NoError(t, err)

	rec = &pageRecorder{}
	require.NoError(t, c.Dispatch(server.URL+"/ua", rec.handle))
	c.Wait()
	require.Len(t, rec.pages, 1)
	assert.Contains(t, userAgents, string(rec.pages[0].Body))
}

func TestIsWebpageMIME(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=UTF-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"application/pdf", false},
		{"application/json", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, isWebpageMIME(tt.contentType))
		})
	}
}

func TestIsWebpageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/blog/post#comments", true},
		{"http://example.com/", true},
		{"https://example.com/image.JPG", false},
		{"https://example.com/doc.pdf?download=1", false},
		{"//example.com/", false},
		{"javascript:void(0)", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, isWebpageURL(tt.url))
		})
	}
}
