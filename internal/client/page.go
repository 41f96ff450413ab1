package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bookmarks/popup/internal/config"
	"bookmarks/popup/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// PageClient is the network side of metadata resolution.
type PageClient interface {
	// FetchText downloads the body of url. Error statuses still return the
	// body; only transport failures are errors.
	FetchText(ctx context.Context, url string) (string, error)
	// ProbeExists issues a HEAD request and reports a successful status.
	ProbeExists(ctx context.Context, url string) bool
}

type pageClient struct {
	rl            ratelimit.Limiter
	httpClient    *resty.Client
	proxySupplier proxy.Supplier
	proxyMutex    sync.Mutex
}

func NewPageClient(cfg config.MetadataConfig, proxySupplier proxy.Supplier) PageClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &pageClient{
		rl:            rl,
		httpClient:    client,
		proxySupplier: proxySupplier,
	}
}

func (c *pageClient) FetchText(ctx context.Context, url string) (string, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.rotateProxy()
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		log.Debugf("Fetched %s with status %d, keeping the body", url, resp.StatusCode())
	}

	log.Debugf("Fetched %s (%d bytes)", url, len(resp.String()))
	return resp.String(), nil
}

func (c *pageClient) ProbeExists(ctx context.Context, url string) bool {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Head(url)
	if err != nil {
		log.Debugf("Probe failed for %s: %v", url, err)
		return false
	}

	return resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices
}

func (c *pageClient) rotateProxy() {
	if c.proxySupplier == nil {
		return
	}

	c.proxyMutex.Lock()
	defer c.proxyMutex.Unlock()

	if newProxy := c.proxySupplier.Get(); newProxy != "" {
		log.Infof("🔄 Switching to new proxy: %s", newProxy)
		c.httpClient.SetProxy(newProxy)
	}
}
