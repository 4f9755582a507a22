package specs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/specdex/specdex/pkg/codec"
	"github.com/specdex/specdex/pkg/errors"
	"github.com/specdex/specdex/pkg/observability"
	"github.com/specdex/specdex/pkg/platform"
	"github.com/specdex/specdex/pkg/source"
)

const (
	descriptorExt    = ".spec"
	compressedSuffix = ".rz"
)

// Requirement is one dependency edge of a Descriptor: a package name plus
// its version constraint in string form.
type Requirement struct {
	Name       string
	Constraint string
}

// Descriptor is the full per-release metadata record, as opposed to the
// bare identity Tuple carried by indexes.
type Descriptor struct {
	Name         string
	Version      string
	Platform     platform.Platform
	Summary      string
	Homepage     string
	Licenses     []string
	Dependencies []Requirement
}

// FetchDescriptor resolves the full metadata record for one tuple from one
// source. The local cache holds the decompressed, encoded descriptor; the
// remote side serves it zlib-compressed under the quick path.
//
// A readable, decodable local file short-circuits the network entirely. A
// local file that fails to decode is not an error here: it falls through
// to a remote fetch, which rewrites the cache when updating.
func (f *Fetcher) FetchDescriptor(ctx context.Context, t Tuple, src *source.Source) (*Descriptor, error) {
	fname := t.FileName() + descriptorExt
	remote := src.DescriptorURL(fname + compressedSuffix)
	localDir := src.DescriptorCacheDir(f.root)
	local := filepath.Join(localDir, fname)

	if raw, err := os.ReadFile(local); err == nil {
		var d Descriptor
		if derr := f.codec.Decode(raw, &d); derr == nil {
			observability.Index().OnDescriptorFetch(ctx, src.String(), t.Name, true)
			return &d, nil
		}
	}

	compressed, err := f.client.Fetch(ctx, remote)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "fetch descriptor %s from %s", t, src)
	}
	raw, err := codec.Inflate(compressed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "inflate descriptor %s", t)
	}
	var d Descriptor
	if err := f.codec.Decode(raw, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode descriptor %s", t)
	}

	if f.update {
		// Cache the decompressed form; failure to persist never fails
		// the fetch.
		if err := os.MkdirAll(localDir, 0o755); err == nil {
			_ = os.WriteFile(local, raw, 0o644)
		}
	}
	observability.Index().OnDescriptorFetch(ctx, src.String(), t.Name, false)
	return &d, nil
}

// FindDescriptor tries each configured source in order and returns the
// first descriptor found for the tuple.
func (f *Fetcher) FindDescriptor(ctx context.Context, t Tuple) (*Descriptor, *source.Source, error) {
	var lastErr error
	for _, src := range f.sources {
		d, err := f.FetchDescriptor(ctx, t, src)
		if err != nil {
			lastErr = err
			continue
		}
		return d, src, nil
	}
	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New(errors.ErrCodePackageNotFound, "no source provides %s", t)
}
