// Package transport implements the fetch-or-reuse primitives the cache
// engine builds on.
//
// Client is the seam the engine depends on: a plain fetch for one-shot
// downloads and a conditional fetch that consults a local cache file before
// touching the network. The default HTTPClient speaks HTTP(S) and file URLs,
// retries transient failures with exponential backoff, and transparently
// gunzips responses for URLs ending in ".gz" (the index transfer format), so
// local cache files always hold the uncompressed bytes.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/specdex/specdex/pkg/observability"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client fetches remote bytes, optionally reusing a local cache file.
// Implementations must be safe for concurrent use.
type Client interface {
	// Fetch downloads the resource at rawURL and returns its bytes.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)

	// ReuseOrFetch returns the bytes for rawURL, reusing localPath when the
	// remote confirms it is still fresh. Fresh fetches are persisted to
	// localPath when update is true; a remote failure with a usable local
	// copy falls back to the local bytes. It fails only when no local copy
	// exists and the remote fetch fails.
	ReuseOrFetch(ctx context.Context, rawURL, localPath string, update bool) ([]byte, error)
}

// HTTPClient is the default Client. The zero value is not usable; construct
// with NewHTTPClient.
type HTTPClient struct {
	http       *http.Client
	headers    map[string]string
	retryDelay time.Duration
}

// NewHTTPClient creates an HTTPClient with a standard timeout for registry
// requests. Headers, if given, are applied to every request.
func NewHTTPClient(headers map[string]string) *HTTPClient {
	return &HTTPClient{
		http:       &http.Client{Timeout: httpTimeout},
		headers:    headers,
		retryDelay: baseRetryDelay,
	}
}

// Fetch implements Client. Responses for ".gz" URLs are gunzipped before
// being returned. Transient failures are retried with backoff.
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, _, err := c.fetch(ctx, rawURL, time.Time{})
	return data, err
}

// ReuseOrFetch implements Client with a conditional GET: the local file's
// modification time is offered as If-Modified-Since, and a 304 answer serves
// the local bytes without a second read of the network.
func (c *HTTPClient) ReuseOrFetch(ctx context.Context, rawURL, localPath string, update bool) ([]byte, error) {
	var mtime time.Time
	info, statErr := os.Stat(localPath)
	haveLocal := statErr == nil && !info.IsDir()
	if haveLocal {
		mtime = info.ModTime()
	}

	data, modTime, err := c.fetch(ctx, rawURL, mtime)
	switch {
	case err == nil && data == nil:
		// Not modified: the local copy is fresh.
		observability.Cache().OnCacheHit(ctx, localPath)
		return os.ReadFile(localPath)
	case err != nil && haveLocal:
		// Remote trouble, but we have bytes. Favor availability.
		observability.Cache().OnCacheHit(ctx, localPath)
		return os.ReadFile(localPath)
	case err != nil:
		return nil, err
	}

	observability.Cache().OnCacheMiss(ctx, localPath)
	if update {
		if werr := writeFileAtomic(localPath, data, modTime); werr != nil {
			return nil, werr
		}
	}
	return data, nil
}

// fetch performs the GET with retries. A zero mtime means unconditional.
// Returns (nil, _, nil) on a 304 Not Modified answer.
func (c *HTTPClient) fetch(ctx context.Context, rawURL string, mtime time.Time) ([]byte, time.Time, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if u.Scheme == "file" {
		data, err := readFileURL(u)
		return data, time.Time{}, err
	}

	var data []byte
	var modTime time.Time
	err = retryFetch(ctx, c.retryDelay, func() error {
		var ferr error
		data, modTime, ferr = c.doRequest(ctx, u, mtime)
		return ferr
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, modTime, nil
}

func (c *HTTPClient) doRequest(ctx context.Context, u *url.URL, mtime time.Time) ([]byte, time.Time, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if !mtime.IsZero() {
		req.Header.Set("If-Modified-Since", mtime.UTC().Format(http.TimeFormat))
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, time.Time{}, transient(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, time.Time{}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode >= 500:
		return nil, time.Time{}, transient(fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, time.Time{}, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Time{}, transient(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	if strings.HasSuffix(u.Path, ".gz") {
		if body, err = gunzip(body); err != nil {
			return nil, time.Time{}, err
		}
	}

	var modTime time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, perr := http.ParseTime(lm); perr == nil {
			modTime = t
		}
	}
	return body, modTime, nil
}

func readFileURL(u *url.URL) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if strings.HasSuffix(u.Path, ".gz") {
		return gunzip(data)
	}
	return data, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gunzip: %v", ErrNetwork, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gunzip: %v", ErrNetwork, err)
	}
	return out, nil
}

// writeFileAtomic persists data with a temp file + rename so concurrent
// readers never observe a half-written cache file. The file's mtime is set
// to the server's Last-Modified when available so the next conditional GET
// can revalidate precisely.
func writeFileAtomic(path string, data []byte, modTime time.Time) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return werr
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	if !modTime.IsZero() {
		_ = os.Chtimes(path, modTime, modTime)
	}
	return nil
}
