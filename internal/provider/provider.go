package provider

import (
	"context"

	"bookmarks/popup/internal/domain"
)

// TreeProvider returns a read-only snapshot of the bookmark tree at call time.
type TreeProvider interface {
	GetTree(ctx context.Context) ([]*domain.BookmarkNode, error)
}

type staticProvider struct {
	roots []*domain.BookmarkNode
}

// NewStaticProvider serves a fixed, already built tree.
func NewStaticProvider(roots ...*domain.BookmarkNode) TreeProvider {
	return &staticProvider{roots: roots}
}

func (p *staticProvider) GetTree(_ context.Context) ([]*domain.BookmarkNode, error) {
	return p.roots, nil
}
