package specs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/source"
	"github.com/specdex/specdex/pkg/transport"
)

// fakeClient serves remote bytes from a map and mimics the transport's
// reuse-or-fetch contract: an existing local file wins, a miss reads the
// remote map and persists when update is set. Per-URL call counts let
// tests assert on memoization and retry behavior.
type fakeClient struct {
	mu     sync.Mutex
	remote map[string][]byte
	// fetches counts remote reads per URL (direct Fetch calls and
	// ReuseOrFetch cache misses).
	fetches map[string]int
	// reuses counts ReuseOrFetch calls per URL regardless of outcome.
	reuses map[string]int
}

func newFakeClient(remote map[string][]byte) *fakeClient {
	if remote == nil {
		remote = make(map[string][]byte)
	}
	return &fakeClient{
		remote:  remote,
		fetches: make(map[string]int),
		reuses:  make(map[string]int),
	}
}

func (c *fakeClient) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches[rawURL]++
	data, ok := c.remote[rawURL]
	if !ok {
		return nil, transport.ErrNotFound
	}
	return data, nil
}

func (c *fakeClient) ReuseOrFetch(ctx context.Context, rawURL, localPath string, update bool) ([]byte, error) {
	c.mu.Lock()
	c.reuses[rawURL]++
	c.mu.Unlock()

	if data, err := os.ReadFile(localPath); err == nil {
		return data, nil
	}
	data, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if update {
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func mustSource(t *testing.T, raw string) *source.Source {
	t.Helper()
	src, err := source.New(raw)
	if err != nil {
		t.Fatalf("source.New(%q): %v", raw, err)
	}
	return src
}

func encodeTuples(t *testing.T, tuples []Tuple) []byte {
	t.Helper()
	data, err := codec.Gob{}.Encode(tuples)
	if err != nil {
		t.Fatalf("encode tuples: %v", err)
	}
	return data
}

// indexURL returns the remote URL the fetcher resolves for one index.
func indexURL(src *source.Source, kind Kind) string {
	return src.FileURL(kind.FileName() + ".gz")
}

func newTestFetcher(t *testing.T, client *fakeClient, srcs ...*source.Source) *Fetcher {
	t.Helper()
	f, err := NewFetcher(srcs,
		WithClient(client),
		WithCacheRoot(t.TempDir()),
		WithUpdate(true),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}
