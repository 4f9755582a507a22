package specs

import (
	"context"
	"os"
	"sync"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/observability"
	"github.com/specdex/specdex/pkg/transport"
)

// BlobCache is the lowest-level fetch-or-reuse primitive: it resolves a
// remote path against a local cache file and decodes the result.
//
// The "use cached vs. refetch" decision belongs to the transport's
// conditional fetch. BlobCache adds the self-heal on top: a partially
// written or truncated cache file is indistinguishable from a genuinely
// invalid remote payload except by refetching, so the first decode failure
// deletes the local file and retries the whole sequence exactly once
// (when cache writes are permitted).
//
// Resolve serializes per local path, so concurrent queries never race the
// delete-and-refetch of the same cache file.
type BlobCache struct {
	client transport.Client
	codec  codec.Codec
	update bool

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewBlobCache builds a BlobCache. update gates whether the local file may
// be written or deleted; the flag is decided once by the owner and never
// re-evaluated here.
func NewBlobCache(client transport.Client, c codec.Codec, update bool) *BlobCache {
	return &BlobCache{
		client: client,
		codec:  c,
		update: update,
		locks:  make(map[string]*pathLock),
	}
}

// Resolve fetches (or reuses) the bytes for remoteURL backed by localPath
// and decodes them into v. It fails with a TRANSPORT_ERROR when no cached
// bytes exist and the remote fetch fails, and with a CorruptCacheError when
// the bytes still don't decode after the single self-heal retry.
func (b *BlobCache) Resolve(ctx context.Context, remoteURL, localPath string, v any) error {
	unlock := b.lockPath(localPath)
	defer unlock()

	healed := false
	for {
		data, err := b.client.ReuseOrFetch(ctx, remoteURL, localPath, b.update)
		if err != nil {
			return errors.Wrap(errors.ErrCodeTransport, err, "fetch %s", remoteURL)
		}

		derr := b.codec.Decode(data, v)
		if derr == nil {
			return nil
		}
		if b.update && !healed {
			healed = true
			observability.Cache().OnCacheHeal(ctx, localPath)
			_ = os.Remove(localPath)
			continue
		}
		return &errors.CorruptCacheError{Path: localPath, Err: derr}
	}
}

// lockPath serializes access per local file. Locks are reference counted so
// the map doesn't grow with every path ever resolved.
func (b *BlobCache) lockPath(path string) func() {
	b.mu.Lock()
	l := b.locks[path]
	if l == nil {
		l = &pathLock{}
		b.locks[path] = l
	}
	l.refs++
	b.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, path)
		}
		b.mu.Unlock()
	}
}
