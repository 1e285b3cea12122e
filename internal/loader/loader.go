// Package loader fetches resource bytes for the cache from HTTP(S) URLs and
// local files.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/llehouerou/wavecore/internal/cache"
)

const (
	userAgent      = "waves-music-player/1.0 (https://github.com/llehouerou/wavecore)"
	defaultTimeout = 30 * time.Second

	// DefaultMaxBytes bounds a single response body.
	DefaultMaxBytes = 512 << 20
)

var (
	errNotFound    = xerrors.New("resource not found")
	errTooLarge    = xerrors.New("resource too large")
	errUnsupported = xerrors.New("unsupported location")
)

// IsNotFoundError evaluates if the given error reports a missing resource.
func IsNotFoundError(err error) bool {
	return xerrors.Is(err, errNotFound)
}

// IsTooLargeError evaluates if the given error reports a body over the limit.
func IsTooLargeError(err error) bool {
	return xerrors.Is(err, errTooLarge)
}

// IsUnsupportedError evaluates if the given error reports a scheme the loader
// cannot read.
func IsUnsupportedError(err error) bool {
	return xerrors.Is(err, errUnsupported)
}

// Loader reads http, https and file locations. Keys without a scheme are
// local paths.
type Loader struct {
	httpClient *http.Client
	maxBytes   int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// New creates a new loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Verify Loader implements cache.Loader at compile time.
var _ cache.Loader = (*Loader)(nil)

// Fetch returns the bytes at key. The kind does not change how a location is
// read.
func (l *Loader) Fetch(ctx context.Context, _ cache.Kind, key string) ([]byte, error) {
	if !strings.Contains(key, "://") {
		return l.readFile(key)
	}

	u, err := url.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return l.get(ctx, u.String())
	case "file":
		return l.readFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupported, u.Scheme)
	}
}

func (l *Loader) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if resp.ContentLength > l.maxBytes {
		return nil, errTooLarge
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", errNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

// readLimited reads r fully, failing once more than maxBytes arrive.
func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}
