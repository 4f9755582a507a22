package specs

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/errors"
)

func TestBlobCacheSelfHeal(t *testing.T) {
	tuples := []Tuple{{Name: "demo", Version: "1.0.0"}}
	remote := "https://one.test/specs.1.gz"
	client := newFakeClient(map[string][]byte{
		remote: encodeTuples(t, tuples),
	})

	local := filepath.Join(t.TempDir(), "specs.1")
	if err := os.WriteFile(local, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("seed corrupt cache: %v", err)
	}

	cache := NewBlobCache(client, codec.Gob{}, true)
	var got []Tuple
	if err := cache.Resolve(context.Background(), remote, local, &got); err != nil {
		t.Fatalf("Resolve after self-heal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "demo" {
		t.Errorf("got tuples %v, want [demo 1.0.0]", got)
	}
	if client.fetches[remote] != 1 {
		t.Errorf("remote reads = %d, want 1", client.fetches[remote])
	}

	// The heal refetches into the cache file.
	healed, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("read healed cache: %v", err)
	}
	var check []Tuple
	if err := (codec.Gob{}).Decode(healed, &check); err != nil {
		t.Errorf("healed cache file does not decode: %v", err)
	}
}

func TestBlobCacheHealExhausted(t *testing.T) {
	remote := "https://one.test/specs.1.gz"
	client := newFakeClient(map[string][]byte{
		remote: []byte("still garbage"),
	})

	local := filepath.Join(t.TempDir(), "specs.1")
	cache := NewBlobCache(client, codec.Gob{}, true)
	var got []Tuple
	err := cache.Resolve(context.Background(), remote, local, &got)
	if !errors.IsCorruptCache(err) {
		t.Fatalf("err = %v, want CorruptCacheError", err)
	}
	var cce *errors.CorruptCacheError
	if !stderrors.As(err, &cce) {
		t.Fatalf("err %v is not *CorruptCacheError", err)
	}
	if cce.Path != local {
		t.Errorf("corrupt path = %q, want %q", cce.Path, local)
	}
	if client.reuses[remote] != 2 {
		t.Errorf("ReuseOrFetch calls = %d, want 2 (one retry)", client.reuses[remote])
	}
}

func TestBlobCacheFreshLocalSkipsRemote(t *testing.T) {
	tuples := []Tuple{{Name: "demo", Version: "1.0.0"}}
	remote := "https://one.test/specs.1.gz"
	client := newFakeClient(nil)

	local := filepath.Join(t.TempDir(), "specs.1")
	if err := os.WriteFile(local, encodeTuples(t, tuples), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	cache := NewBlobCache(client, codec.Gob{}, true)
	var got []Tuple
	if err := cache.Resolve(context.Background(), remote, local, &got); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if client.fetches[remote] != 0 {
		t.Errorf("remote reads = %d, want 0", client.fetches[remote])
	}
}

func TestBlobCacheNoHealWhenReadOnly(t *testing.T) {
	remote := "https://one.test/specs.1.gz"
	client := newFakeClient(map[string][]byte{
		remote: []byte("garbage"),
	})

	local := filepath.Join(t.TempDir(), "specs.1")
	cache := NewBlobCache(client, codec.Gob{}, false)
	var got []Tuple
	err := cache.Resolve(context.Background(), remote, local, &got)
	if !errors.IsCorruptCache(err) {
		t.Fatalf("err = %v, want CorruptCacheError", err)
	}
	if client.reuses[remote] != 1 {
		t.Errorf("ReuseOrFetch calls = %d, want 1 (no retry without update)", client.reuses[remote])
	}
}

func TestBlobCacheTransportError(t *testing.T) {
	client := newFakeClient(nil) // nothing remote, nothing local
	local := filepath.Join(t.TempDir(), "specs.1")

	cache := NewBlobCache(client, codec.Gob{}, true)
	var got []Tuple
	err := cache.Resolve(context.Background(), "https://one.test/specs.1.gz", local, &got)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.GetCode(err) != errors.ErrCodeTransport {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeTransport)
	}
}
