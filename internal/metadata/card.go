package metadata

import (
	"context"
	"sync"

	"bookmarks/popup/internal/domain"
)

// Card is the display state of one bookmark or folder. Favicon and title
// start empty and are filled from the cache or by an asynchronous
// resolution.
type Card struct {
	engine *Engine
	item   *domain.BookmarkNode

	mu        sync.RWMutex
	favicon   string
	title     string
	listeners []func(domain.PageMetadata)

	inflight sync.WaitGroup
}

func (e *Engine) NewCard(item *domain.BookmarkNode) *Card {
	return &Card{
		engine: e,
		item:   item,
	}
}

func (c *Card) Item() *domain.BookmarkNode {
	return c.item
}

// Initialize fills the card from the cache, or starts a resolution in the
// background on a miss. Folders are left empty.
func (c *Card) Initialize(ctx context.Context) {
	if !c.item.IsLeaf() {
		return
	}

	if meta, ok := c.engine.Cached(ctx, c.item.URL); ok {
		c.apply(meta)
		return
	}
	c.start(ctx)
}

// Refresh re-runs the resolution in the background, bypassing the cache.
func (c *Card) Refresh(ctx context.Context) {
	if !c.item.IsLeaf() {
		return
	}
	c.start(ctx)
}

// Wait blocks until every resolution started by this card has finished.
func (c *Card) Wait() {
	c.inflight.Wait()
}

// start launches a resolution that outlives ctx's cancellation; there is no
// way to abort one once started.
func (c *Card) start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	url := c.item.URL

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.apply(c.engine.Resolve(ctx, url))
	}()
}

func (c *Card) apply(meta domain.PageMetadata) {
	c.mu.Lock()
	c.favicon = meta.Favicon
	c.title = meta.Title
	listeners := append([]func(domain.PageMetadata){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(meta)
	}
}

// OnChange registers fn to run after each update of the resolved metadata.
func (c *Card) OnChange(fn func(domain.PageMetadata)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Card) Favicon() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.favicon
}

// Title is the resolved page title, not the bookmark's own title.
func (c *Card) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.title
}

// DisplayTitle prefers the bookmark's own title, then the resolved page
// title, then the placeholder.
func (c *Card) DisplayTitle() string {
	if c.item.Title != "" {
		return c.item.Title
	}
	if title := c.Title(); title != "" {
		return title
	}
	return c.engine.placeholder
}

func (c *Card) IsFolder() bool {
	return c.item.IsFolder()
}
