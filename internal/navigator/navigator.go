package navigator

import (
	"context"
	"fmt"
	"sync"

	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/provider"

	log "github.com/sirupsen/logrus"
)

// DefaultPathSource supplies the saved ancestor-ID chain used on startup.
type DefaultPathSource interface {
	GetDefault(ctx context.Context) []string
}

// Opener opens a bookmark URL outside the popup, e.g. in a new tab.
type Opener interface {
	Open(ctx context.Context, url string) error
}

type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Navigator holds the bookmark tree and the path to the folder on screen.
type Navigator struct {
	provider provider.TreeProvider
	defaults DefaultPathSource
	opener   Opener

	mu   sync.RWMutex
	tree []*domain.BookmarkNode
	path domain.NavigationPath
}

func New(treeProvider provider.TreeProvider, defaults DefaultPathSource, opener Opener) *Navigator {
	return &Navigator{
		provider: treeProvider,
		defaults: defaults,
		opener:   opener,
	}
}

// FetchTree loads the tree and rebuilds the path from the saved default.
func (n *Navigator) FetchTree(ctx context.Context) error {
	tree, err := n.provider.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch bookmark tree: %w", err)
	}

	var path domain.NavigationPath
	if len(tree) > 0 {
		path = RestorePath(tree[0], n.defaults.GetDefault(ctx))
	}

	n.mu.Lock()
	n.tree = tree
	n.path = path
	n.mu.Unlock()

	log.Debugf("Fetched bookmark tree, restored path of depth %d", len(path))
	return nil
}

// RestorePath replays saved IDs from root. Each ID must name a child of the
// node reached so far; the first ID that does not stops the replay and the
// path built until then is kept. A leading ID equal to the root's own ID is
// consumed as the root itself.
func RestorePath(root *domain.BookmarkNode, ids []string) domain.NavigationPath {
	path := domain.NavigationPath{root}
	if len(ids) > 0 && ids[0] == root.ID {
		ids = ids[1:]
	}

	current := root
	for _, id := range ids {
		next, ok := current.Child(id)
		if !ok {
			log.Debugf("Saved default path stops at unknown node %s", id)
			break
		}
		path = append(path, next)
		current = next
	}
	return path
}

func (n *Navigator) Tree() []*domain.BookmarkNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tree
}

// Path returns a copy of the current path.
func (n *Navigator) Path() domain.NavigationPath {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.path.Clone()
}

// CurrentChildren returns the children of the folder on screen, or an empty
// slice if there is none.
func (n *Navigator) CurrentChildren() []*domain.BookmarkNode {
	n.mu.RLock()
	defer n.mu.RUnlock()

	last := n.path.Last()
	if last == nil || last.Children == nil {
		return []*domain.BookmarkNode{}
	}
	return last.Children
}

func (n *Navigator) GoToRoot() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.tree) > 0 {
		n.path = domain.NavigationPath{n.tree[0]}
	}
}

// NavigateTo truncates the path to path[0..index]. index must come from the
// current path; it is not validated.
func (n *Navigator) NavigateTo(index int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.path = n.path[:index+1 : index+1]
}

// HandleClick opens leaves and enters folders. A node that is neither is
// entered like an empty folder.
func (n *Navigator) HandleClick(ctx context.Context, node *domain.BookmarkNode) {
	if node == nil {
		return
	}

	if node.IsLeaf() {
		if n.opener == nil {
			return
		}
		if err := n.opener.Open(ctx, node.URL); err != nil {
			log.Warnf("Failed to open %s: %v", node.URL, err)
		}
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = append(n.path, node)
}
