// Package cache holds short-lived read models between writes.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
)

// ReadModels caches computed views. Entries expire by the injected clock so
// tests can step time; go-cache's janitor only reclaims memory.
type ReadModels struct {
	items *gocache.Cache
	clock clock.Clock
	ttl   time.Duration
}

type stamped struct {
	value   any
	expires time.Time
}

// NewReadModels builds a cache with an explicit TTL. A zero ttl disables caching.
func NewReadModels(ttl time.Duration, clk clock.Clock) *ReadModels {
	if clk == nil {
		clk = clock.System{}
	}
	cleanup := ttl * 2
	if cleanup <= 0 {
		cleanup = constants.DefaultCacheTTL
	}
	return &ReadModels{
		items: gocache.New(cleanup, cleanup),
		clock: clk,
		ttl:   ttl,
	}
}

// TTL returns the configured lifetime.
func (r *ReadModels) TTL() time.Duration {
	return r.ttl
}

// Set stores v under key until the TTL elapses.
func (r *ReadModels) Set(key string, v any) {
	if r == nil || r.ttl <= 0 {
		return
	}
	r.items.Set(key, stamped{value: v, expires: r.clock.Now().Add(r.ttl)}, r.ttl*2)
}

// Flush drops every cached view.
func (r *ReadModels) Flush() {
	if r == nil {
		return
	}
	r.items.Flush()
}

// Len reports stored entries, expired or not.
func (r *ReadModels) Len() int {
	if r == nil {
		return 0
	}
	return r.items.ItemCount()
}

func (r *ReadModels) lookup(key string) (any, bool) {
	if r == nil || r.ttl <= 0 {
		return nil, false
	}
	raw, ok := r.items.Get(key)
	if !ok {
		return nil, false
	}
	entry := raw.(stamped)
	if !r.clock.Now().Before(entry.expires) {
		r.items.Delete(key)
		return nil, false
	}
	return entry.value, true
}

// Get returns the cached value for key if present, unexpired and of type T.
func Get[T any](r *ReadModels, key string) (T, bool) {
	var zero T
	v, ok := r.lookup(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
