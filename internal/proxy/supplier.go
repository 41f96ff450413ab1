package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Supplier hands out proxy URLs for outgoing page requests.
type Supplier interface {
	Get() string
}

type roundRobinSupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier probes every proxy against testURL in parallel and keeps the
// working ones. An empty list yields a supplier that always returns "".
func NewSupplier(ctx context.Context, proxies []string, testURL string) Supplier {
	if len(proxies) == 0 {
		return &roundRobinSupplier{}
	}

	log.Infof("🔄 Testing %d proxies in parallel...", len(proxies))

	results := make([]bool, len(proxies))
	semaphore := make(chan struct{}, 16)
	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)
		go func(index int, proxyURL string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[index] = isProxyValid(ctx, proxyURL, testURL)
		}(i, proxyURL)
	}
	wg.Wait()

	// Keep configuration order so rotation is predictable.
	valid := make([]string, 0, len(proxies))
	for i, ok := range results {
		if ok {
			valid = append(valid, proxies[i])
		} else {
			log.Infof("❌ Proxy %s is not working, skipping", proxies[i])
		}
	}

	log.Infof("✅ Proxy supplier initialized with %d working proxies out of %d tested", len(valid), len(proxies))
	return &roundRobinSupplier{proxies: valid}
}

// Get returns the next proxy URL in round-robin fashion
func (p *roundRobinSupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxyURL := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)
	return proxyURL
}

func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)

	resp, err := client.R().
		SetContext(ctx).
		Head(testURL)
	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
