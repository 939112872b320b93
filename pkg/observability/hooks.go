// Package observability provides hooks for metrics and logging.
//
// Instrumentation is optional: the engine packages call into a global hook
// registry whose defaults do nothing. Consumers register real implementations
// at startup, typically [Metrics], which records Prometheus series that can be
// written to a node-exporter textfile.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics()
//	observability.SetQueryHooks(m)
//	observability.SetCacheHooks(m)
//	defer m.WriteTextfile("/var/lib/node_exporter/bagrules.prom")
//
// Libraries call hooks to emit events:
//
//	observability.Query().OnParseStart(ctx)
//	// ... parse rules ...
//	observability.Query().OnParseComplete(ctx, lines, rules, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Query Hooks
// =============================================================================

// QueryHooks receives events from the parse, build and query stages.
type QueryHooks interface {
	// Parse events
	OnParseStart(ctx context.Context)
	OnParseComplete(ctx context.Context, lines, rules int, duration time.Duration, err error)

	// OnBuild records a finished graph construction.
	OnBuild(ctx context.Context, direction string, nodes, edges int, duration time.Duration)

	// OnQuery records a finished query. value is meaningful only when err is nil.
	OnQuery(ctx context.Context, kind, target string, value uint64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnParseStart(context.Context)                                    {}
func (NoopQueryHooks) OnParseComplete(context.Context, int, int, time.Duration, error) {}
func (NoopQueryHooks) OnBuild(context.Context, string, int, int, time.Duration)        {}
func (NoopQueryHooks) OnQuery(context.Context, string, string, uint64, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	queryHooks QueryHooks = NoopQueryHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetQueryHooks registers custom query hooks.
// This should be called once at application startup before any queries run.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	queryHooks = NoopQueryHooks{}
	cacheHooks = NoopCacheHooks{}
}
