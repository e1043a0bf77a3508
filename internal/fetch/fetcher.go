// Package fetch downloads remote documents into a local staging directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"docextract-backend/internal/shared/util"
)

const (
	// DefaultTimeout bounds a single download including the body transfer.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxBytes caps the size of a downloaded body.
	DefaultMaxBytes int64 = 50 << 20

	fallbackName = "download"
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	KindInvalid  ErrorKind = "invalid"
	KindNetwork  ErrorKind = "network"
	KindStatus   ErrorKind = "status"
	KindTooLarge ErrorKind = "too_large"
	KindWrite    ErrorKind = "write"
)

// FetchError reports why a URL could not be retrieved.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves remote files over HTTP(S).
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBytes sets the maximum accepted body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is overridden.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	clone := *f.client
	clone.Timeout = f.timeout
	f.client = &clone
	return f
}

// Fetch downloads rawURL into destDir and returns the local path.
// The file is named after the last segment of the URL path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Kind: KindInvalid, Err: err}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &FetchError{URL: rawURL, Kind: KindWrite, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Kind: KindInvalid, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: rawURL, Kind: KindStatus, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}
	if resp.ContentLength > f.maxBytes {
		return "", &FetchError{URL: rawURL, Kind: KindTooLarge, Err: fmt.Errorf("content length %d exceeds %d", resp.ContentLength, f.maxBytes)}
	}

	dest := filepath.Join(destDir, FileName(u))
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", &FetchError{URL: rawURL, Kind: KindWrite, Err: err}
	}

	n, copyErr := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := out.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(dest)
		return "", &FetchError{URL: rawURL, Kind: KindNetwork, Err: copyErr}
	case n > f.maxBytes:
		_ = os.Remove(dest)
		return "", &FetchError{URL: rawURL, Kind: KindTooLarge, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)}
	case closeErr != nil:
		_ = os.Remove(dest)
		return "", &FetchError{URL: rawURL, Kind: KindWrite, Err: closeErr}
	}
	return dest, nil
}

// FileName derives a safe local file name from the URL path.
func FileName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallbackName
	}
	name, err := util.SanitizeFileName(base)
	if err != nil {
		return fallbackName
	}
	return name
}
