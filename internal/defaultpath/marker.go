// Package defaultpath persists the ancestor-ID chain of the folder the popup
// reopens on launch.
package defaultpath

import (
	"context"
	"fmt"

	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/preference"
	"bookmarks/popup/internal/store"
)

// IDs is the persisted preference holding the default path. Construct it
// once per process with NewIDs and share it between every Marker.
type IDs = preference.Preference[[]string]

func NewIDs(s store.Store, key string) *IDs {
	return preference.New(s, key, []string{})
}

type Marker struct {
	ids *IDs
}

func NewMarker(ids *IDs) *Marker {
	return &Marker{ids: ids}
}

// IsDefault reports whether item's ID equals the last saved ID. Only the
// last element is compared, wherever item currently lives in the tree.
func (m *Marker) IsDefault(ctx context.Context, item *domain.BookmarkNode) bool {
	if item == nil {
		return false
	}
	ids := m.ids.Get(ctx)
	return len(ids) > 0 && ids[len(ids)-1] == item.ID
}

// SetDefault saves the IDs of path followed by item. The caller guarantees
// that path holds the ancestors of item.
func (m *Marker) SetDefault(ctx context.Context, path domain.NavigationPath, item *domain.BookmarkNode) error {
	if item == nil {
		return nil
	}
	ids := append(path.IDs(), item.ID)
	if err := m.ids.Set(ctx, ids); err != nil {
		return fmt.Errorf("failed to save default path: %w", err)
	}
	return nil
}

func (m *Marker) RemoveDefault(ctx context.Context) error {
	if err := m.ids.Set(ctx, []string{}); err != nil {
		return fmt.Errorf("failed to clear default path: %w", err)
	}
	return nil
}

func (m *Marker) GetDefault(ctx context.Context) []string {
	ids := m.ids.Get(ctx)
	if ids == nil {
		return []string{}
	}
	return ids
}
