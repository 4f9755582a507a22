package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Index hooks
	i := NoopIndexHooks{}
	i.OnLoadStart(ctx, "https://index.specdex.org", "latest")
	i.OnLoadComplete(ctx, "https://index.specdex.org", "latest", 100, time.Second, nil)
	i.OnDescriptorFetch(ctx, "https://index.specdex.org", "rails", true)
	i.OnDescriptorSkip(ctx, "https://index.specdex.org", "rails", nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "/tmp/specs.1")
	c.OnCacheMiss(ctx, "/tmp/specs.1")
	c.OnCacheHeal(ctx, "/tmp/specs.1")

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "index.specdex.org", "/specs.1.gz")
	h.OnResponse(ctx, "GET", "index.specdex.org", "/specs.1.gz", 200, time.Second)
	h.OnError(ctx, "GET", "index.specdex.org", "/specs.1.gz", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Index() should return NoopIndexHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customIndex := &testIndexHooks{}
	SetIndexHooks(customIndex)
	if Index() != customIndex {
		t.Error("SetIndexHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Nil registrations are ignored
	SetIndexHooks(nil)
	if Index() != customIndex {
		t.Error("SetIndexHooks(nil) should keep the previous hooks")
	}

	// Reset restores noop defaults
	Reset()
	if _, ok := Index().(NoopIndexHooks); !ok {
		t.Error("Reset should restore NoopIndexHooks")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	hooks := &testCacheHooks{}
	SetCacheHooks(hooks)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "/a")
	Cache().OnCacheMiss(ctx, "/b")
	Cache().OnCacheHeal(ctx, "/c")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.heals != 1 {
		t.Errorf("events = %d hits, %d misses, %d heals; want 1 each",
			hooks.hits, hooks.misses, hooks.heals)
	}
}

type testIndexHooks struct {
	NoopIndexHooks
}

type testCacheHooks struct {
	hits, misses, heals int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *testCacheHooks) OnCacheHeal(context.Context, string) { h.heals++ }

type testHTTPHooks struct {
	NoopHTTPHooks
}
