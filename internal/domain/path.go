package domain

// NavigationPath is the chain of folders from the tree root to the folder
// currently on screen. Index 0 is always the root.
type NavigationPath []*BookmarkNode

// IDs maps the path to node IDs, in order.
func (p NavigationPath) IDs() []string {
	ids := make([]string, 0, len(p))
	for _, node := range p {
		ids = append(ids, node.ID)
	}
	return ids
}

// Last returns the folder currently on screen, or nil for an empty path.
func (p NavigationPath) Last() *BookmarkNode {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Clone returns a copy of the path that does not share its backing array.
func (p NavigationPath) Clone() NavigationPath {
	if p == nil {
		return nil
	}
	out := make(NavigationPath, len(p))
	copy(out, p)
	return out
}
