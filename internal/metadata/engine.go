// Package metadata resolves display titles and favicons for bookmarked URLs
// and caches the results in the persistent store.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"bookmarks/popup/internal/client"
	"bookmarks/popup/internal/config"
	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/preference"
	"bookmarks/popup/internal/store"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCachePrefix     = "bookmark_"
	DefaultFallbackService = "https://www.google.com/s2/favicons?domain={hostname}&sz=64"
	DefaultPlaceholder     = "Untitled"
)

// Engine is shared by every card. It owns the cache, the network client and
// the favicon fallback chain.
type Engine struct {
	store       store.Store
	client      client.PageClient
	cachePrefix string
	placeholder string
	service     ServiceStrategy
	strategies  []FaviconStrategy

	// nil unless concurrent resolutions of one URL are coalesced
	group *singleflight.Group
}

func NewEngine(s store.Store, pageClient client.PageClient, cfg config.MetadataConfig) *Engine {
	e := &Engine{
		store:       s,
		client:      pageClient,
		cachePrefix: valueOr(cfg.CachePrefix, DefaultCachePrefix),
		placeholder: valueOr(cfg.UntitledPlaceholder, DefaultPlaceholder),
		service:     ServiceStrategy{Template: valueOr(cfg.FallbackService, DefaultFallbackService)},
	}
	e.strategies = []FaviconStrategy{
		IconLinkStrategy{},
		DefaultPathStrategy{Client: pageClient},
		e.service,
	}
	if cfg.CoalesceRequests {
		e.group = &singleflight.Group{}
	}
	return e
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Strategies returns the favicon fallback chain in the order it is tried.
func (e *Engine) Strategies() []FaviconStrategy {
	return e.strategies
}

func (e *Engine) Placeholder() string {
	return e.placeholder
}

func (e *Engine) CacheKey(rawURL string) string {
	return e.cachePrefix + rawURL
}

func (e *Engine) entry(rawURL string) *preference.Preference[domain.PageMetadata] {
	return preference.New(e.store, e.CacheKey(rawURL), domain.PageMetadata{})
}

// Cached returns the cached metadata for rawURL, if resolution ever completed.
func (e *Engine) Cached(ctx context.Context, rawURL string) (domain.PageMetadata, bool) {
	return e.entry(rawURL).Lookup(ctx)
}

// Resolve runs the resolution algorithm for rawURL, ignoring the cache on
// read, and writes the outcome to the cache. It never fails; the result may
// be partial or empty.
func (e *Engine) Resolve(ctx context.Context, rawURL string) domain.PageMetadata {
	if e.group == nil {
		return e.resolve(ctx, rawURL)
	}

	v, _, _ := e.group.Do(rawURL, func() (any, error) {
		return e.resolve(ctx, rawURL), nil
	})
	return v.(domain.PageMetadata)
}

func (e *Engine) resolve(ctx context.Context, rawURL string) domain.PageMetadata {
	var meta domain.PageMetadata

	if err := e.fetchPageInfo(ctx, rawURL, &meta); err != nil {
		log.Debugf("Resolution of %s failed, using fallback favicon: %v", rawURL, err)
		return e.recoverWithService(ctx, rawURL, meta)
	}

	e.save(ctx, rawURL, meta)
	return meta
}

// fetchPageInfo fills meta as far as it gets. On error, meta keeps whatever
// was resolved before the failure.
func (e *Engine) fetchPageInfo(ctx context.Context, rawURL string, meta *domain.PageMetadata) error {
	u, err := parsePageURL(rawURL)
	if err != nil {
		return err
	}

	body, err := e.client.FetchText(ctx, rawURL)
	if err != nil {
		return err
	}

	meta.Title = extractTitle(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := newPage(u, doc)
	for _, strategy := range e.strategies {
		if favicon, ok := strategy.Favicon(ctx, page); ok {
			log.Debugf("Favicon for %s resolved by %s strategy", rawURL, strategy.Name())
			meta.Favicon = favicon
			break
		}
	}
	return nil
}

// recoverWithService is the last resort: point at the favicon service for
// the URL's hostname and cache that. Without a hostname nothing is cached.
func (e *Engine) recoverWithService(ctx context.Context, rawURL string, meta domain.PageMetadata) domain.PageMetadata {
	u, err := parsePageURL(rawURL)
	if err != nil || u.Hostname() == "" {
		meta.Favicon = ""
		return meta
	}

	meta.Favicon = e.service.URLFor(u.Hostname())
	e.save(ctx, rawURL, meta)
	return meta
}

func (e *Engine) save(ctx context.Context, rawURL string, meta domain.PageMetadata) {
	if err := e.entry(rawURL).Set(ctx, meta); err != nil {
		log.Warnf("Failed to cache metadata for %s: %v", rawURL, err)
	}
}

var errNotAbsolute = errors.New("URL is not absolute")

func parsePageURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, errNotAbsolute)
	}
	return u, nil
}
