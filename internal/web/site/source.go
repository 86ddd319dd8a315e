// Package site renders the public showroom page from the catalog and the
// site configuration.
package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

const (
	tracerName      = "github.com/faithfulaborisade1/kilkennyquads/internal/web/site"
	maxDocumentSize = 4 << 20
)

var (
	// ErrNotFound is returned when a source has no document with the given name.
	ErrNotFound = errors.New("site: document not found")
	// ErrTooLarge is returned when a document exceeds the read limit.
	ErrTooLarge = errors.New("site: document too large")
)

// Source returns the raw bytes of a published document.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads documents from a file tree such as a repository checkout.
type DirSource struct {
	fsys fs.FS
}

// NewDirSource returns a Source over fsys.
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("site: invalid document name %q", name)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", name, err)
	}
	return data, nil
}

// HTTPClient is the subset of *http.Client used by HTTPSource.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPSource fetches documents relative to a base URL, typically the origin
// the static site is published on.
type HTTPSource struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPSource returns a Source rooted at baseURL. A nil client uses a
// client with a 10 second timeout.
func NewHTTPSource(baseURL string, client HTTPClient) (*HTTPSource, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("site: parse content url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("site: content url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{base: base, client: client}, nil
}

// Fetch implements Source. Any non-2xx status is an error.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (_ []byte, err error) {
	ctx, span := observability.Tracer(tracerName).Start(ctx, "site.Fetch")
	defer func() { observability.EndSpan(span, err) }()

	target := s.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(name, "/")})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("site: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("site: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("site: fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", name, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxDocumentSize)
	}
	return data, nil
}
