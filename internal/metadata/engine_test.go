package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"bookmarks/popup/internal/client"
	"bookmarks/popup/internal/config"
	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceURL = "https://www.google.com/s2/favicons?domain=x.test&sz=64"

func newTestEngine(c client.PageClient, coalesce bool) (*Engine, store.Store) {
	s := store.NewMemoryStore()
	return NewEngine(s, c, config.MetadataConfig{CoalesceRequests: coalesce}), s
}

func TestResolveFaviconFallbackOrder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		exists     bool
		wantIcon   string
		wantProbes []string
	}{
		{
			name:     "icon link",
			body:     `<html><head><title>Docs</title><link rel="icon" href="/f.ico"></head></html>`,
			wantIcon: "https://x.test/f.ico",
		},
		{
			name:       "default path reachable",
			body:       `<html><head><title>Docs</title></head></html>`,
			exists:     true,
			wantIcon:   "https://x.test/favicon.ico",
			wantProbes: []string{"https://x.test/favicon.ico"},
		},
		{
			name:       "nothing reachable",
			body:       `<html><head><title>Docs</title></head></html>`,
			wantIcon:   serviceURL,
			wantProbes: []string{"https://x.test/favicon.ico"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeClient()
			c.pages["https://x.test/docs"] = tt.body
			c.exists["https://x.test/favicon.ico"] = tt.exists

			e, _ := newTestEngine(c, false)
			meta := e.Resolve(context.Background(), "https://x.test/docs")

			assert.Equal(t, tt.wantIcon, meta.Favicon)
			assert.Equal(t, "Docs", meta.Title)
			assert.Equal(t, tt.wantProbes, c.probed())

			cached, ok := e.Cached(context.Background(), "https://x.test/docs")
			require.True(t, ok)
			assert.Equal(t, meta, cached)
		})
	}
}

func TestResolveHref(t *testing.T) {
	page := newPage(mustParse(t, "https://x.test/a/b"), nil)

	tests := map[string]string{
		"//cdn.test/i.png":        "https://cdn.test/i.png",
		"/static/i.png":           "https://x.test/static/i.png",
		"http://other.test/i.png": "http://other.test/i.png",
		"https://s.test/i.png":    "https://s.test/i.png",
		"img/i.png":               "https://x.test/img/i.png",
		"../i.png":                "https://x.test/../i.png",
	}
	for href, want := range tests {
		assert.Equal(t, want, resolveHref(page, href), href)
	}
}

func TestIconLinkStrategy(t *testing.T) {
	tests := []struct {
		name     string
		head     string
		wantIcon string
	}{
		{
			name: "document order",
			head: `<link rel="stylesheet" href="/s.css">
				<link rel="shortcut icon" href="first.ico">
				<link rel="icon" href="/second.ico">`,
			wantIcon: "https://x.test/first.ico",
		},
		{
			name:     "legacy capitalized rel",
			head:     `<link rel="Shortcut Icon" href="/legacy.ico">`,
			wantIcon: "https://x.test/legacy.ico",
		},
		{
			name:     "upper case rel",
			head:     `<link rel="ICON" href="/upper.ico">`,
			wantIcon: "https://x.test/upper.ico",
		},
		{
			name:     "apple touch icon is not an icon link",
			head:     `<link rel="apple-touch-icon" href="/touch.png"><link rel="icon" href="/real.ico">`,
			wantIcon: "https://x.test/real.ico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeClient()
			c.pages["https://x.test/"] = "<html><head>" + tt.head + "</head></html>"
			e, _ := newTestEngine(c, false)

			meta := e.Resolve(context.Background(), "https://x.test/")
			assert.Equal(t, tt.wantIcon, meta.Favicon)
			assert.Empty(t, meta.Title)
			assert.Empty(t, c.probed())
		})
	}
}

func TestIconLinkWithoutHref(t *testing.T) {
	c := newFakeClient()
	c.pages["https://x.test/"] = `<link rel="icon"><title>T</title>`
	e, _ := newTestEngine(c, false)

	meta := e.Resolve(context.Background(), "https://x.test/")
	assert.Empty(t, meta.Favicon)
	assert.Equal(t, "T", meta.Title)
	assert.Empty(t, c.probed(), "an icon link ends the chain even without href")

	_, ok := e.Cached(context.Background(), "https://x.test/")
	assert.True(t, ok)
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Hello", extractTitle("<TITLE>  Hello \t</TITLE>"))
	assert.Equal(t, "First", extractTitle("<title>First</title><title>Second</title>"))
	assert.Equal(t, "", extractTitle("<html>no title</html>"))
	assert.Equal(t, "", extractTitle(`<title lang="en">Attr</title>`))
}

func TestResolveFetchFailure(t *testing.T) {
	c := newFakeClient()
	e, _ := newTestEngine(c, false)

	meta := e.Resolve(context.Background(), "https://x.test/down")
	assert.Equal(t, serviceURL, meta.Favicon)
	assert.Empty(t, meta.Title)

	cached, ok := e.Cached(context.Background(), "https://x.test/down")
	require.True(t, ok)
	assert.Equal(t, meta, cached)
}

func TestResolveMalformedURL(t *testing.T) {
	c := newFakeClient()
	e, s := newTestEngine(c, false)

	for _, raw := range []string{"not a url", "::bad", "/relative/path", "mailto:someone@x.test"} {
		meta := e.Resolve(context.Background(), raw)
		assert.Empty(t, meta.Favicon, raw)

		_, ok, err := s.Get(context.Background(), e.CacheKey(raw))
		require.NoError(t, err)
		assert.False(t, ok, "nothing cached for %q", raw)
	}
}

func TestCachedMalformedEntry(t *testing.T) {
	c := newFakeClient()
	e, s := newTestEngine(c, false)
	require.NoError(t, s.Set(context.Background(), "bookmark_https://x.test/", "{oops"))

	_, ok := e.Cached(context.Background(), "https://x.test/")
	assert.False(t, ok)
}

func TestResolveCoalescesConcurrentRequests(t *testing.T) {
	c := newFakeClient()
	c.pages["https://x.test/"] = `<title>Once</title><link rel="icon" href="/i.ico">`
	c.release = make(chan struct{})
	e, _ := newTestEngine(c, true)

	var wg sync.WaitGroup
	results := make([]domain.PageMetadata, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Resolve(context.Background(), "https://x.test/")
		}(i)
	}

	require.Eventually(t, func() bool { return c.fetchCount("https://x.test/") == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(c.release)
	wg.Wait()

	for _, meta := range results {
		assert.Equal(t, "Once", meta.Title)
	}
	assert.Equal(t, 1, c.fetchCount("https://x.test/"))
}

func TestResolveOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/with-icon", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title> Site </title><link rel="icon" href="/f.ico"></head></html>`))
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain</title></head></html>`))
	})
	mux.HandleFunc("/members", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<title>Members</title><link rel="icon" href="/m.ico">`))
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pageClient := client.NewPageClient(config.MetadataConfig{Timeout: 5 * time.Second}, nil)
	e, _ := newTestEngine(pageClient, false)

	meta := e.Resolve(context.Background(), srv.URL+"/with-icon")
	assert.Equal(t, domain.PageMetadata{Favicon: srv.URL + "/f.ico", Title: "Site"}, meta)

	meta = e.Resolve(context.Background(), srv.URL+"/plain")
	assert.Equal(t, domain.PageMetadata{Favicon: srv.URL + "/favicon.ico", Title: "Plain"}, meta)

	meta = e.Resolve(context.Background(), srv.URL+"/members")
	assert.Equal(t, domain.PageMetadata{Favicon: srv.URL + "/m.ico", Title: "Members"}, meta, "a 403 page is scraped like any other")
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
