// Package preference provides typed values persisted under a single store key.
package preference

import (
	"context"
	"encoding/json"
	"sync"

	"bookmarks/popup/internal/store"

	log "github.com/sirupsen/logrus"
)

// Preference is a typed slot over one persisted key. Values are JSON encoded.
// Reads never fail: a missing key, a store error or malformed data all yield
// the default value. A Preference caches the last value it read or wrote, so
// every holder of the same instance observes a Set immediately.
type Preference[T any] struct {
	store        store.Store
	key          string
	defaultValue T

	mu     sync.RWMutex
	loaded bool
	value  T
	found  bool
}

func New[T any](s store.Store, key string, defaultValue T) *Preference[T] {
	return &Preference[T]{
		store:        s,
		key:          key,
		defaultValue: defaultValue,
	}
}

func (p *Preference[T]) Key() string {
	return p.key
}

// Get returns the persisted value or the default.
func (p *Preference[T]) Get(ctx context.Context) T {
	value, _ := p.Lookup(ctx)
	return value
}

// Lookup returns the persisted value and whether a valid one was present.
func (p *Preference[T]) Lookup(ctx context.Context) (T, bool) {
	p.mu.RLock()
	if p.loaded {
		value, found := p.value, p.found
		p.mu.RUnlock()
		return value, found
	}
	p.mu.RUnlock()

	value, found, err := p.load(ctx)
	if err != nil {
		log.Warnf("Failed to read preference %s, using default: %v", p.key, err)
		return value, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		p.value, p.found, p.loaded = value, found, true
	}
	return p.value, p.found
}

// load reads the key from the store. Only store errors are returned; those
// are not cached so the next read retries.
func (p *Preference[T]) load(ctx context.Context) (T, bool, error) {
	raw, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return p.defaultValue, false, err
	}
	if !ok {
		return p.defaultValue, false, nil
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		log.Warnf("Malformed preference %s, using default: %v", p.key, err)
		return p.defaultValue, false, nil
	}
	return value, true, nil
}

// Set persists the value. The in-process copy is updated even when the
// store write fails, so the rest of the process keeps a consistent view.
func (p *Preference[T]) Set(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.value, p.found, p.loaded = value, true, true
	p.mu.Unlock()

	return p.store.Set(ctx, p.key, string(data))
}
