// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about index loads, cache operations, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetIndexHooks(&myIndexHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Index().OnLoadStart(ctx, source, kind)
//	// ... load the index ...
//	observability.Index().OnLoadComplete(ctx, source, kind, tupleCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Index Hooks
// =============================================================================

// IndexHooks receives events from index loading and descriptor fetching.
type IndexHooks interface {
	// Index load events
	OnLoadStart(ctx context.Context, source, kind string)
	OnLoadComplete(ctx context.Context, source, kind string, tupleCount int, duration time.Duration, err error)

	// Descriptor fetch events
	OnDescriptorFetch(ctx context.Context, source, name string, cached bool)

	// OnDescriptorSkip records a release dropped from a resolution because
	// its descriptor could not be fetched.
	OnDescriptorSkip(ctx context.Context, source, name string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from local cache file operations.
type CacheHooks interface {
	// OnCacheHit records a reuse of fresh local bytes.
	OnCacheHit(ctx context.Context, path string)

	// OnCacheMiss records a fetch forced by a missing or stale local file.
	OnCacheMiss(ctx context.Context, path string)

	// OnCacheHeal records a self-heal retry after a decode failure.
	OnCacheHeal(ctx context.Context, path string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIndexHooks is a no-op implementation of IndexHooks.
type NoopIndexHooks struct{}

func (NoopIndexHooks) OnLoadStart(context.Context, string, string) {}
func (NoopIndexHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopIndexHooks) OnDescriptorFetch(context.Context, string, string, bool) {}
func (NoopIndexHooks) OnDescriptorSkip(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheHeal(context.Context, string) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	indexHooks IndexHooks = NoopIndexHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetIndexHooks registers custom index hooks.
// This should be called once at application startup before any index loads.
func SetIndexHooks(h IndexHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		indexHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Index returns the registered index hooks.
func Index() IndexHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return indexHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	indexHooks = NoopIndexHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
