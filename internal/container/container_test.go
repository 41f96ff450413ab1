package container

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"bookmarks/popup/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookmarksFile = `{"roots": {
  "bookmark_bar": {"id": "1", "name": "Bookmarks bar", "type": "folder", "children": [
    {"id": "4", "name": "Work", "type": "folder", "children": []}
  ]},
  "other": {"id": "2", "name": "Other bookmarks", "type": "folder", "children": []}
}}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Bookmarks")
	require.NoError(t, os.WriteFile(path, []byte(bookmarksFile), 0o644))

	return &config.Config{
		Store: config.StoreConfig{Backend: "memory", DefaultPathKey: "defaultBookmarkIds"},
		Tree:  config.TreeConfig{BookmarksFile: path, RootSelectors: []string{"$.roots.bookmark_bar", "$.roots.other"}},
		Metadata: config.MetadataConfig{
			MaxWorkers: 2,
		},
	}
}

func TestNewMemoryContainer(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Service.Start(ctx))
	view := c.Service.View(ctx)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "Bookmarks bar", view.Items[0].DisplayTitle)

	require.NoError(t, c.Service.Open(ctx, 0))
	require.NoError(t, c.Service.PinItem(ctx, 0))
	assert.Equal(t, []string{"0", "1", "4"}, c.Marker.GetDefault(ctx))
}

func TestNewRedisContainerSharesDefaultPath(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	host, port, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)
	portNumber, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Redis = config.RedisConfig{Host: host, Port: portNumber, KeyPrefix: "bookmarks:kv:"}

	first, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, first.Service.Start(ctx))
	require.NoError(t, first.Service.PinItem(ctx, 0))
	first.Close()

	raw, err := mr.Get("bookmarks:kv:defaultBookmarkIds")
	require.NoError(t, err)
	assert.JSONEq(t, `["0","1"]`, raw)

	second, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Service.Start(ctx))
	crumbs := second.Service.View(ctx).Breadcrumbs
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Bookmarks bar", crumbs[1].Title)
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.Store.Backend = "sqlite"
	_, err := New(ctx, cfg, nil)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Tree.RootSelectors = []string{"$.roots["}
	_, err = New(ctx, cfg, nil)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1}
	_, err = New(ctx, cfg, nil)
	assert.Error(t, err)
}

func TestNewWithoutBookmarksFile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Tree.BookmarksFile = ""

	c, err := New(ctx, cfg, nil)
	require.NoError(t, err, "commands that never read the tree still get a container")
	defer c.Close()

	err = c.Service.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoBookmarksFile)

	meta := c.Service.Refresh(ctx, "not a url")
	assert.Empty(t, meta.Favicon)
}

func TestFileContainerRestoresDefaultAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store = config.StoreConfig{
		Backend:        "file",
		FilePath:       filepath.Join(t.TempDir(), "store.json"),
		DefaultPathKey: "defaultBookmarkIds",
	}

	first, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, first.Service.Start(ctx))
	require.NoError(t, first.Service.Open(ctx, 0))
	require.NoError(t, first.Service.PinItem(ctx, 0))
	first.Close()

	second, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Service.Start(ctx))

	crumbs := second.Service.View(ctx).Breadcrumbs
	require.Len(t, crumbs, 3)
	assert.Equal(t, "Work", crumbs[2].Title)
}
