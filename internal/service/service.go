package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookmarks/popup/internal/defaultpath"
	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/metadata"
	"bookmarks/popup/internal/navigator"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Item is one row of the popup.
type Item struct {
	ID           string `json:"id"`
	DisplayTitle string `json:"display_title"`
	URL          string `json:"url,omitempty"`
	Favicon      string `json:"favicon,omitempty"`
	IsFolder     bool   `json:"is_folder"`
	IsDefault    bool   `json:"is_default"`
}

// Crumb is one breadcrumb entry; Index is what Back expects.
type Crumb struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// View is what the popup renders for the folder on screen.
type View struct {
	Breadcrumbs []Crumb `json:"breadcrumbs"`
	Items       []Item  `json:"items"`
}

type Service struct {
	navigator *navigator.Navigator
	marker    *defaultpath.Marker
	engine    *metadata.Engine

	maxWorkers int
	viewWait   time.Duration

	mu    sync.Mutex
	cards map[string]*metadata.Card // by node ID
}

func NewService(
	nav *navigator.Navigator,
	marker *defaultpath.Marker,
	engine *metadata.Engine,
	maxWorkers int,
	viewWait time.Duration,
) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Service{
		navigator:  nav,
		marker:     marker,
		engine:     engine,
		maxWorkers: maxWorkers,
		viewWait:   viewWait,
		cards:      make(map[string]*metadata.Card),
	}
}

// Start fetches the tree and restores the saved default folder.
func (s *Service) Start(ctx context.Context) error {
	if err := s.navigator.FetchTree(ctx); err != nil {
		return err
	}

	path := s.navigator.Path()
	log.Infof("📚 Bookmark tree loaded, opened at %s", describePath(path))
	return nil
}

// View initializes a card for every visible node and waits up to the
// configured time for pending resolutions. Items whose resolution is still
// running show their current state.
func (s *Service) View(ctx context.Context) View {
	path := s.navigator.Path()
	children := s.navigator.CurrentChildren()

	cards := make([]*metadata.Card, len(children))
	for i, child := range children {
		cards[i] = s.card(ctx, child)
	}
	s.waitFor(cards)

	view := View{
		Breadcrumbs: make([]Crumb, 0, len(path)),
		Items:       make([]Item, 0, len(children)),
	}
	for i, node := range path {
		view.Breadcrumbs = append(view.Breadcrumbs, Crumb{Index: i, ID: node.ID, Title: node.Title})
	}
	for _, card := range cards {
		node := card.Item()
		view.Items = append(view.Items, Item{
			ID:           node.ID,
			DisplayTitle: card.DisplayTitle(),
			URL:          node.URL,
			Favicon:      card.Favicon(),
			IsFolder:     card.IsFolder(),
			IsDefault:    s.marker.IsDefault(ctx, node),
		})
	}
	return view
}

// card returns the card for node, creating and initializing it on first use.
func (s *Service) card(ctx context.Context, node *domain.BookmarkNode) *metadata.Card {
	s.mu.Lock()
	card, ok := s.cards[node.ID]
	if !ok || card.Item() != node {
		card = s.engine.NewCard(node)
		s.cards[node.ID] = card
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		card.Initialize(ctx)
	}
	return card
}

func (s *Service) waitFor(cards []*metadata.Card) {
	if s.viewWait <= 0 {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, card := range cards {
			card.Wait()
		}
	}()

	select {
	case <-done:
	case <-time.After(s.viewWait):
		log.Debugf("View rendered before all metadata resolved")
	}
}

// Open acts on the visible item at index: folders are entered, bookmarks
// are opened.
func (s *Service) Open(ctx context.Context, index int) error {
	children := s.navigator.CurrentChildren()
	if index < 0 || index >= len(children) {
		return fmt.Errorf("no item at index %d", index)
	}
	s.navigator.HandleClick(ctx, children[index])
	return nil
}

// Back returns to the breadcrumb at index.
func (s *Service) Back(index int) error {
	if index < 0 || index >= len(s.navigator.Path()) {
		return fmt.Errorf("no breadcrumb at index %d", index)
	}
	s.navigator.NavigateTo(index)
	return nil
}

func (s *Service) Root() {
	s.navigator.GoToRoot()
}

// PinCurrent makes the folder on screen the default.
func (s *Service) PinCurrent(ctx context.Context) error {
	path := s.navigator.Path()
	if len(path) == 0 {
		return fmt.Errorf("bookmark tree not loaded")
	}
	return s.marker.SetDefault(ctx, path[:len(path)-1], path[len(path)-1])
}

// PinItem makes the visible folder at index the default.
func (s *Service) PinItem(ctx context.Context, index int) error {
	children := s.navigator.CurrentChildren()
	if index < 0 || index >= len(children) {
		return fmt.Errorf("no item at index %d", index)
	}
	if !children[index].IsFolder() {
		return fmt.Errorf("item %s is not a folder", children[index].ID)
	}
	return s.marker.SetDefault(ctx, s.navigator.Path(), children[index])
}

func (s *Service) Unpin(ctx context.Context) error {
	return s.marker.RemoveDefault(ctx)
}

func (s *Service) DefaultPath(ctx context.Context) []string {
	return s.marker.GetDefault(ctx)
}

// Refresh re-resolves url and waits for the result.
func (s *Service) Refresh(ctx context.Context, url string) domain.PageMetadata {
	card := s.engine.NewCard(domain.Bookmark("", "", url))
	card.Refresh(ctx)
	card.Wait()
	return domain.PageMetadata{Favicon: card.Favicon(), Title: card.Title()}
}

// Warm resolves every bookmark of the tree that is not cached yet.
func (s *Service) Warm(ctx context.Context) (int, error) {
	var urls []string
	seen := make(map[string]struct{})
	for _, root := range s.navigator.Tree() {
		root.Walk(func(node *domain.BookmarkNode) {
			if !node.IsLeaf() {
				return
			}
			if _, ok := seen[node.URL]; ok {
				return
			}
			seen[node.URL] = struct{}{}
			if _, cached := s.engine.Cached(ctx, node.URL); !cached {
				urls = append(urls, node.URL)
			}
		})
	}

	log.Infof("🔄 Warming metadata cache for %d bookmarks", len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)
	for _, url := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.engine.Resolve(ctx, url)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("warm cache: %w", err)
	}

	log.Infof("✅ Metadata cache warmed for %d bookmarks", len(urls))
	return len(urls), nil
}

func describePath(path domain.NavigationPath) string {
	if len(path) == 0 {
		return "<empty tree>"
	}
	titles := make([]string, 0, len(path))
	for _, node := range path {
		title := node.Title
		if title == "" {
			title = node.ID
		}
		titles = append(titles, title)
	}
	return strings.Join(titles, " / ")
}
