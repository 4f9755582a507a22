// Package source models a remote package source and the mapping from its
// URLs to local cache directories.
//
// A source's identity is its normalized URL; the ordered source list is
// supplied by the caller and immutable for the process lifetime. The cache
// layout namespaces files per host and port:
//
//	<root>/<host>%<port>/<escaped-remote-path-dir>/
//
// so two sources on the same host but different ports never share cache
// files, while two URLs differing only by scheme map to the same directory.
package source

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specdex/specdex/pkg/errors"
)

// Source is a remote base location serving spec indexes and descriptors.
type Source struct {
	url *url.URL
}

// New parses and normalizes a source URL. Only http, https, and file schemes
// are accepted. Trailing slashes are stripped so that equal locations compare
// equal regardless of how they were written.
func New(raw string) (*Source, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "invalid source URL %q", raw)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return nil, errors.New(errors.ErrCodeInvalidSource, "unsupported source scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" && u.Scheme != "file" {
		return nil, errors.New(errors.ErrCodeInvalidSource, "source URL %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""
	return &Source{url: u}, nil
}

// String returns the normalized URL, the source's identity.
func (s *Source) String() string {
	return s.url.String()
}

// URL returns a copy of the parsed source URL.
func (s *Source) URL() *url.URL {
	u := *s.url
	return &u
}

// FileURL resolves the URL of a file living directly under the source root.
func (s *Source) FileURL(name string) string {
	u := *s.url
	u.Path = s.url.Path + "/" + name
	return u.String()
}

// DescriptorURL resolves the URL of a descriptor file under the source's
// quick-access tree.
func (s *Source) DescriptorURL(name string) string {
	u := *s.url
	u.Path = s.url.Path + "/quick/" + name
	return u.String()
}

// CacheDir returns the local cache directory for files living directly under
// the source root. See Dir for the mapping rules.
func (s *Source) CacheDir(root string) string {
	u := *s.url
	u.Path = s.url.Path + "/-" // placeholder file; Dir keeps the directory portion
	return Dir(root, &u)
}

// DescriptorCacheDir returns the local cache directory for descriptor files
// fetched from the source's quick-access tree.
func (s *Source) DescriptorCacheDir(root string) string {
	u := *s.url
	u.Path = s.url.Path + "/quick/-"
	return Dir(root, &u)
}

// driveLetter matches a leading Windows drive-letter path segment ("/C:/").
var driveLetter = regexp.MustCompile(`^/([a-zA-Z]):/`)

// Dir maps a remote file URL to the local cache directory that holds its
// cached copy. The mapping is a pure function of the URL: no I/O happens
// here. The host and port are taken from the URL itself, never derived from
// the scheme, so http and https URLs for the same location share a cache
// directory. A drive-letter segment in the path is rewritten ("/C:/" becomes
// "/C-/") because the colon is not a legal path character on some
// filesystems.
func Dir(root string, u *url.URL) string {
	p := u.Path
	if p == "" {
		p = "/"
	}
	p = driveLetter.ReplaceAllString(p, "/$1-/")
	dir := path.Dir(p)

	host := u.Hostname() + "%" + u.Port()
	return filepath.Join(root, host, filepath.FromSlash(strings.TrimPrefix(dir, "/")))
}

// List parses raw URLs into sources, preserving order.
func List(raw []string) ([]*Source, error) {
	sources := make([]*Source, 0, len(raw))
	for _, r := range raw {
		s, err := New(r)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}
