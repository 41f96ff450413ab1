package metadata

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"bookmarks/popup/internal/client"

	"github.com/PuerkitoBio/goquery"
)

var titleRegex = regexp.MustCompile(`(?i)<title>(.*?)</title>`)

// Page is a fetched bookmark page as seen by the favicon strategies.
type Page struct {
	URL     *url.URL
	BaseURL string // scheme://host of URL
	Doc     *goquery.Document
}

func newPage(u *url.URL, doc *goquery.Document) *Page {
	return &Page{
		URL:     u,
		BaseURL: u.Scheme + "://" + u.Host,
		Doc:     doc,
	}
}

// extractTitle returns the text of the first <title> tag, trimmed, using a
// pattern match over the raw body.
func extractTitle(body string) string {
	matches := titleRegex.FindStringSubmatch(body)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(matches[1])
}

// FaviconStrategy is one step of the favicon fallback chain. ok=false passes
// control to the next strategy; ok=true ends the chain, even with an empty
// favicon.
type FaviconStrategy interface {
	Name() string
	Favicon(ctx context.Context, page *Page) (favicon string, ok bool)
}

// IconLinkStrategy uses the first <link rel="icon"> or
// <link rel="shortcut icon"> of the document. rel is compared ignoring case,
// as browsers do for HTML documents.
type IconLinkStrategy struct{}

func (IconLinkStrategy) Name() string { return "icon-link" }

func (IconLinkStrategy) Favicon(_ context.Context, page *Page) (string, bool) {
	if page.Doc == nil {
		return "", false
	}

	link := page.Doc.Find("link[rel]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		return strings.EqualFold(rel, "icon") || strings.EqualFold(rel, "shortcut icon")
	}).First()
	if link.Length() == 0 {
		return "", false
	}

	href, _ := link.Attr("href")
	if href == "" {
		return "", true
	}
	return resolveHref(page, href), true
}

// resolveHref joins an icon href with the page. Relative paths are appended
// to the base URL as is, without dot-segment handling.
func resolveHref(page *Page, href string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return page.URL.Scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return page.BaseURL + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return page.BaseURL + "/" + href
	}
}

// DefaultPathStrategy probes /favicon.ico at the site root.
type DefaultPathStrategy struct {
	Client client.PageClient
}

func (DefaultPathStrategy) Name() string { return "default-path" }

func (s DefaultPathStrategy) Favicon(ctx context.Context, page *Page) (string, bool) {
	favicon := page.BaseURL + "/favicon.ico"
	if s.Client.ProbeExists(ctx, favicon) {
		return favicon, true
	}
	return "", false
}

// ServiceStrategy points at a favicon-by-domain service. Template must contain
// {hostname}.
type ServiceStrategy struct {
	Template string
}

func (ServiceStrategy) Name() string { return "service" }

func (s ServiceStrategy) Favicon(_ context.Context, page *Page) (string, bool) {
	hostname := page.URL.Hostname()
	if hostname == "" {
		return "", false
	}
	return s.URLFor(hostname), true
}

func (s ServiceStrategy) URLFor(hostname string) string {
	return strings.ReplaceAll(s.Template, "{hostname}", hostname)
}
