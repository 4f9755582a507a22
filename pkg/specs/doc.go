// Package specs is the metadata synchronization and caching engine.
//
// A [Fetcher] owns an ordered list of remote sources and answers dependency
// queries against them: which package variants exist ([Fetcher.Available],
// [Fetcher.List]), which satisfy a single dependency ([Fetcher.Search],
// [Fetcher.SpecForDependency]), and what a user probably meant when a name
// doesn't exist ([Fetcher.Suggest]).
//
// Remote indexes are cached on disk under a per-host directory layout (see
// the source package) and in memory per (source, index kind) for the process
// lifetime. The disk layer self-heals: a cache file that fails to decode is
// deleted and refetched once before the failure is surfaced.
//
// The engine deliberately stops at single-dependency resolution; assembling
// a dependency graph from the answers is the caller's job.
package specs
