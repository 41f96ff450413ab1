package domain

// BookmarkNode is a single entry of the bookmark tree. A node with a non-nil
// Children slice is a folder (possibly empty); a node with a URL is a leaf.
type BookmarkNode struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	URL      string          `json:"url,omitempty"`
	Children []*BookmarkNode `json:"children,omitempty"`
}

func (n *BookmarkNode) IsFolder() bool {
	return n != nil && n.Children != nil
}

func (n *BookmarkNode) IsLeaf() bool {
	return n != nil && n.URL != ""
}

// Child returns the direct child with the given ID, if any.
func (n *BookmarkNode) Child(id string) (*BookmarkNode, bool) {
	if n == nil {
		return nil, false
	}
	for _, child := range n.Children {
		if child != nil && child.ID == id {
			return child, true
		}
	}
	return nil, false
}

// Walk visits the node and all of its descendants depth-first.
func (n *BookmarkNode) Walk(fn func(node *BookmarkNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Folder builds a folder node. Children is never nil for folders.
func Folder(id, title string, children ...*BookmarkNode) *BookmarkNode {
	if children == nil {
		children = []*BookmarkNode{}
	}
	return &BookmarkNode{ID: id, Title: title, Children: children}
}

func Bookmark(id, title, url string) *BookmarkNode {
	return &BookmarkNode{ID: id, Title: title, URL: url}
}
