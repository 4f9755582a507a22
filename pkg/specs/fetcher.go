package specs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/observability"
	"github.com/specdex/specdex/pkg/source"
	"github.com/specdex/specdex/pkg/transport"
)

// appName names the cache subdirectory under the user cache dir.
const appName = "specdex"

// Fetcher aggregates spec indexes across an ordered list of sources and
// answers queries against them. A Fetcher owns its in-memory buckets, so
// tests and embedders can run several independent instances without shared
// process state.
//
// Buckets are memoized per (source, kind) for the Fetcher's lifetime and
// never evicted; callers needing freshness create a new Fetcher (or a new
// process). All methods are safe for concurrent use.
type Fetcher struct {
	sources []*source.Source
	client  transport.Client
	codec   codec.Codec
	root    string
	update  bool
	// updateSet records whether WithUpdate was applied, so the probe is
	// skipped when the caller decided.
	updateSet bool
	blob      *BlobCache

	mu      sync.Mutex
	buckets map[Kind]map[string][]Tuple
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient injects the transport collaborator. Defaults to an HTTP client
// with retries.
func WithClient(c transport.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithCodec injects the serialization collaborator. Defaults to the gob
// codec.
func WithCodec(c codec.Codec) Option {
	return func(f *Fetcher) { f.codec = c }
}

// WithCacheRoot overrides the on-disk cache root. Defaults to
// DefaultCacheRoot.
func WithCacheRoot(dir string) Option {
	return func(f *Fetcher) { f.root = dir }
}

// WithUpdate forces the cache-write permission instead of probing the cache
// root. Mostly useful in tests and read-only deployments.
func WithUpdate(update bool) Option {
	return func(f *Fetcher) {
		f.update = update
		f.updateSet = true
	}
}

// NewFetcher builds a Fetcher over the given sources. Whether the cache
// directory may be written is decided here, once, by probing the cache
// root; it is not re-evaluated per call.
func NewFetcher(sources []*source.Source, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		sources: sources,
		codec:   codec.Gob{},
		buckets: make(map[Kind]map[string][]Tuple),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = transport.NewHTTPClient(nil)
	}
	if f.root == "" {
		root, err := DefaultCacheRoot()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve cache root")
		}
		f.root = root
	}
	if !f.updateSet {
		f.update = writableDir(f.root)
	}
	f.blob = NewBlobCache(f.client, f.codec, f.update)
	return f, nil
}

// DefaultCacheRoot returns the default on-disk cache root,
// ~/.cache/specdex/specs (honoring XDG_CACHE_HOME).
func DefaultCacheRoot() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "specs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "specs"), nil
}

// writableDir probes whether the process can create files under dir.
func writableDir(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// Sources returns the configured sources in order.
func (f *Fetcher) Sources() []*source.Source {
	return f.sources
}

// CacheRoot returns the on-disk cache root.
func (f *Fetcher) CacheRoot() string {
	return f.root
}

// Updating reports whether this Fetcher may write the on-disk cache.
func (f *Fetcher) Updating() bool {
	return f.update
}

// Available returns, for each source, the tuples visible under the given
// query type. Results come from the per-(source, kind) buckets, loading
// each index at most once per Fetcher lifetime. No filtering is applied;
// the complete view concatenates prerelease entries before released ones.
func (f *Fetcher) Available(ctx context.Context, q QueryType) (map[*source.Source][]Tuple, error) {
	out := make(map[*source.Source][]Tuple, len(f.sources))
	for _, src := range f.sources {
		for _, kind := range q.kinds() {
			tuples, err := f.tuplesFor(ctx, src, kind)
			if err != nil {
				return nil, err
			}
			out[src] = append(out[src], tuples...)
		}
	}
	return out, nil
}

// List is the presentation variant of Available: for the released view it
// additionally drops tuples with a missing or prerelease version. Only this
// path filters; the underlying buckets and Available stay unfiltered.
func (f *Fetcher) List(ctx context.Context, q QueryType) (map[*source.Source][]Tuple, error) {
	avail, err := f.Available(ctx, q)
	if err != nil {
		return nil, err
	}
	if q != QueryReleased {
		return avail, nil
	}
	for src, tuples := range avail {
		kept := make([]Tuple, 0, len(tuples))
		for _, t := range tuples {
			if !t.HasVersion() || t.Prerelease() {
				continue
			}
			kept = append(kept, t)
		}
		avail[src] = kept
	}
	return avail, nil
}

// tuplesFor returns the bucket for (src, kind), loading the index on first
// access. The Fetcher mutex is held across the load so a given (source,
// kind) pair is fetched at most once even under concurrent queries.
func (f *Fetcher) tuplesFor(ctx context.Context, src *source.Source, kind Kind) ([]Tuple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := f.buckets[kind]
	if bucket == nil {
		bucket = make(map[string][]Tuple)
		f.buckets[kind] = bucket
	}
	if tuples, ok := bucket[src.String()]; ok {
		return tuples, nil
	}

	tuples, err := f.loadIndex(ctx, src, kind)
	if err != nil {
		return nil, err
	}
	bucket[src.String()] = tuples
	return tuples, nil
}

// loadIndex resolves one index file through the blob cache and decodes it
// into tuples. Decode failures are handled inside the blob cache's single
// self-heal retry; what escapes here is either a transport failure or a
// corrupt cache that survived the retry.
func (f *Fetcher) loadIndex(ctx context.Context, src *source.Source, kind Kind) ([]Tuple, error) {
	start := time.Now()
	observability.Index().OnLoadStart(ctx, src.String(), kind.String())

	local := filepath.Join(src.CacheDir(f.root), kind.FileName())
	remote := src.FileURL(kind.FileName() + ".gz")

	var tuples []Tuple
	err := f.blob.Resolve(ctx, remote, local, &tuples)
	observability.Index().OnLoadComplete(ctx, src.String(), kind.String(), len(tuples), time.Since(start), err)
	if err != nil {
		if errors.IsCorruptCache(err) {
			return nil, errors.Wrap(errors.ErrCodeCorruptCache, err, "invalid index cache for %s", src)
		}
		return nil, err
	}
	return tuples, nil
}
