package defaultpath

import (
	"context"
	"testing"

	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerSetGetRemove(t *testing.T) {
	ctx := context.Background()
	docs := domain.Bookmark("2", "Docs", "https://x.test")
	work := domain.Folder("1", "Work", docs)
	root := domain.Folder("0", "", work)

	m := NewMarker(NewIDs(store.NewMemoryStore(), "defaultBookmarkIds"))
	assert.Equal(t, []string{}, m.GetDefault(ctx))

	require.NoError(t, m.SetDefault(ctx, domain.NavigationPath{root}, work))
	assert.Equal(t, []string{"0", "1"}, m.GetDefault(ctx))

	require.NoError(t, m.RemoveDefault(ctx))
	assert.Equal(t, []string{}, m.GetDefault(ctx))
}

func TestMarkerSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	ids := NewIDs(store.NewMemoryStore(), "defaultBookmarkIds")
	work := domain.Folder("1", "Work")

	a := NewMarker(ids)
	b := NewMarker(ids)
	require.NoError(t, a.SetDefault(ctx, domain.NavigationPath{domain.Folder("0", "")}, work))

	assert.True(t, b.IsDefault(ctx, work))
	assert.Equal(t, []string{"0", "1"}, b.GetDefault(ctx))
}

func TestMarkerIsDefaultComparesLastIDOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMarker(NewIDs(store.NewMemoryStore(), "defaultBookmarkIds"))
	assert.False(t, m.IsDefault(ctx, domain.Folder("1", "Work")))

	require.NoError(t, m.SetDefault(ctx,
		domain.NavigationPath{domain.Folder("0", ""), domain.Folder("1", "Work")},
		domain.Folder("7", "Archive")))

	assert.True(t, m.IsDefault(ctx, domain.Folder("7", "Moved elsewhere")))
	assert.False(t, m.IsDefault(ctx, domain.Folder("1", "Work")))
	assert.False(t, m.IsDefault(ctx, nil))
}

func TestMarkerMalformedPersistedValue(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, "defaultBookmarkIds", "not-json"))

	m := NewMarker(NewIDs(s, "defaultBookmarkIds"))
	assert.Equal(t, []string{}, m.GetDefault(ctx))
	assert.False(t, m.IsDefault(ctx, domain.Folder("1", "Work")))
}
