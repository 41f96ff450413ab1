package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bookmarks/popup/internal/domain"

	"github.com/ohler55/ojg/jp"
	log "github.com/sirupsen/logrus"
)

// RootID is the ID of the synthetic node wrapping the top-level folders,
// matching what browser bookmark APIs report for the tree root.
const RootID = "0"

type chromeFileProvider struct {
	path      string
	selectors []jp.Expr
}

// NewChromeFileProvider reads a Chromium "Bookmarks" JSON file. Each selector
// is a JSONPath expression picking one top-level folder, e.g. "$.roots.other".
func NewChromeFileProvider(path string, selectors []string) (TreeProvider, error) {
	exprs := make([]jp.Expr, 0, len(selectors))
	for _, selector := range selectors {
		x, err := jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
		}
		exprs = append(exprs, x)
	}

	return &chromeFileProvider{
		path:      path,
		selectors: exprs,
	}, nil
}

func (p *chromeFileProvider) GetTree(ctx context.Context) ([]*domain.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}

	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks file: %w", err)
	}

	root := domain.Folder(RootID, "")
	for _, x := range p.selectors {
		for _, match := range x.Get(data) {
			raw, ok := match.(map[string]any)
			if !ok {
				log.Warnf("Bookmarks selector %s matched a non-object, skipping", x)
				continue
			}
			if node := convertChromeNode(raw); node != nil {
				root.Children = append(root.Children, node)
			}
		}
	}

	log.Debugf("Loaded bookmark tree from %s with %d top-level folders", p.path, len(root.Children))
	return []*domain.BookmarkNode{root}, nil
}

func convertChromeNode(raw map[string]any) *domain.BookmarkNode {
	id, _ := raw["id"].(string)
	name, _ := raw["name"].(string)

	switch raw["type"] {
	case "url":
		url, _ := raw["url"].(string)
		return domain.Bookmark(id, name, url)
	case "folder":
		folder := domain.Folder(id, name)
		children, _ := raw["children"].([]any)
		for _, child := range children {
			childMap, ok := child.(map[string]any)
			if !ok {
				continue
			}
			if node := convertChromeNode(childMap); node != nil {
				folder.Children = append(folder.Children, node)
			}
		}
		return folder
	default:
		return nil
	}
}
