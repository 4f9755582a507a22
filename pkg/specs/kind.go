package specs

import (
	"github.com/specdex/specdex/pkg/errors"
)

// FormatVersion is the index format revision baked into index file names.
// Bumping it invalidates every cached index at once.
const FormatVersion = "1"

// Kind selects one of the three index files a source publishes.
type Kind int

// Index kinds.
const (
	// KindAll lists every released, non-prerelease variant.
	KindAll Kind = iota
	// KindLatest lists only the newest released variant per name.
	KindLatest
	// KindPrerelease lists prerelease variants only.
	KindPrerelease
)

// String returns the kind's name for logs and hooks.
func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindLatest:
		return "latest"
	case KindPrerelease:
		return "prerelease"
	default:
		return "unknown"
	}
}

// fileStem returns the index file name without the format suffix.
func (k Kind) fileStem() string {
	switch k {
	case KindLatest:
		return "latest_specs"
	case KindPrerelease:
		return "prerelease_specs"
	default:
		return "specs"
	}
}

// FileName returns the index file name as stored in the local cache. The
// remote copy additionally carries a ".gz" suffix.
func (k Kind) FileName() string {
	return k.fileStem() + "." + FormatVersion
}

// QueryType names a view over the index kinds.
type QueryType int

// Query types.
const (
	// QueryLatest serves only the newest released variant per name.
	QueryLatest QueryType = iota
	// QueryReleased serves every released, non-prerelease variant.
	QueryReleased
	// QueryComplete serves prereleases and releases together.
	QueryComplete
	// QueryPrerelease serves prerelease variants only.
	QueryPrerelease
)

// queryKinds maps each query type to the index kinds backing it. For
// QueryComplete the prerelease entries come first; the matcher's stable
// sort keeps that order among equal name+version pairs.
var queryKinds = map[QueryType][]Kind{
	QueryLatest:     {KindLatest},
	QueryReleased:   {KindAll},
	QueryComplete:   {KindPrerelease, KindAll},
	QueryPrerelease: {KindPrerelease},
}

// kinds returns the index kinds backing q.
func (q QueryType) kinds() []Kind {
	return queryKinds[q]
}

// String returns the query type's name.
func (q QueryType) String() string {
	switch q {
	case QueryLatest:
		return "latest"
	case QueryReleased:
		return "released"
	case QueryComplete:
		return "complete"
	case QueryPrerelease:
		return "prerelease"
	default:
		return "unknown"
	}
}

// ParseQueryType converts a user-supplied name into a QueryType.
func ParseQueryType(s string) (QueryType, error) {
	switch s {
	case "latest":
		return QueryLatest, nil
	case "released":
		return QueryReleased, nil
	case "complete":
		return QueryComplete, nil
	case "prerelease":
		return QueryPrerelease, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidQuery, "unknown query type %q (want latest, released, complete, or prerelease)", s)
	}
}
