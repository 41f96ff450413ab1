package metadata

import (
	"context"
	"errors"
	"sync"
)

type fakeClient struct {
	mu      sync.Mutex
	pages   map[string]string
	exists  map[string]bool
	fetches map[string]int
	probes  []string
	release chan struct{} // when set, FetchText blocks until closed
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:   make(map[string]string),
		exists:  make(map[string]bool),
		fetches: make(map[string]int),
	}
}

func (c *fakeClient) FetchText(_ context.Context, url string) (string, error) {
	c.mu.Lock()
	c.fetches[url]++
	body, ok := c.pages[url]
	release := c.release
	c.mu.Unlock()

	if release != nil {
		<-release
	}
	if !ok {
		return "", errors.New("connection refused")
	}
	return body, nil
}

func (c *fakeClient) ProbeExists(_ context.Context, url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, url)
	return c.exists[url]
}

func (c *fakeClient) fetchCount(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches[url]
}

func (c *fakeClient) probed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.probes...)
}
