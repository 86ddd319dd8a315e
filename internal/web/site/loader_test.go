package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
)

const (
	catalogJSON = `{"products":[
  {"id":"a","name":"Quad A","price":"€4,999","description":"Fast","colors":"Red","features":["4WD"],"images":["a1.jpg","a2.jpg"],"visible":true},
  {"id":"b","name":"Quad B","price":"","description":"Hidden","colors":"Blue","features":["2WD"],"images":[],"visible":false}
]}`
	configJSON = `{"site":{"title":"Kilkenny Quads","businessName":"Kilkenny Quads","tagline":"Quads for all"},
  "contact":{"phone":"087 123 4567","phoneFormatted":"+353871234567","email":"info@example.com"},
  "benefits":["Warranty"],"footer":{"copyright":"2024 Kilkenny Quads","tagline":"Ride on"}}`
)

func TestLoaderReadsBothDocuments(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"products.json": {Data: []byte(catalogJSON)},
		"config.json":   {Data: []byte(configJSON)},
	}
	result := NewLoader(NewDirSource(fsys), Documents{}).Load(context.Background())

	require.NoError(t, result.CatalogErr)
	require.NoError(t, result.ConfigErr)
	require.Len(t, result.Data.Catalog.Products, 2)
	require.Equal(t, "Kilkenny Quads", result.Data.Config.Text().Title)
}

func TestLoaderKeepsConfigWhenCatalogFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/config.json":
			_, _ = w.Write([]byte(configJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)
	result := NewLoader(source, DefaultDocuments()).Load(context.Background())

	require.Error(t, result.CatalogErr)
	require.NoError(t, result.ConfigErr)
	require.NotNil(t, result.Data.Catalog.Products)
	require.Empty(t, result.Data.Catalog.Products)
	require.Equal(t, "Quads for all", result.Data.Config.Text().Tagline)
}

func TestLoaderKeepsCatalogWhenConfigMalformed(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"products.json": {Data: []byte(catalogJSON)},
		"config.json":   {Data: []byte(`{"site":`)},
	}
	result := NewLoader(NewDirSource(fsys), Documents{}).Load(context.Background())

	require.ErrorIs(t, result.ConfigErr, content.ErrMalformedDocument)
	require.Equal(t, content.SiteConfig{}, result.Data.Config)
	require.Len(t, result.Data.Catalog.Visible(), 1)
}

func TestDirSourceMissingDocument(t *testing.T) {
	t.Parallel()

	_, err := NewDirSource(fstest.MapFS{}).Fetch(context.Background(), "products.json")
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = NewDirSource(fstest.MapFS{}).Fetch(context.Background(), "../secret.json")
	require.Error(t, err)
}

func TestHTTPSourceResolvesUnderBasePath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/site/products.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(catalogJSON))
	}))
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL+"/site", nil)
	require.NoError(t, err)

	data, err := source.Fetch(context.Background(), "products.json")
	require.NoError(t, err)
	require.Contains(t, string(data), "Quad A")

	_, err = source.Fetch(context.Background(), "config.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewHTTPSourceRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPSource("/content", nil)
	require.Error(t, err)
}

func TestHTTPSourceRejectsOversizedDocument(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[],"pad":"`))
		_, _ = w.Write([]byte(strings.Repeat("x", maxDocumentSize)))
		_, _ = w.Write([]byte(`"}`))
	}))
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), "products.json")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestHTTPSourceAcceptsDocumentAtLimit(t *testing.T) {
	t.Parallel()

	body := strings.Repeat(" ", maxDocumentSize-len(catalogJSON)) + catalogJSON
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	source, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)

	data, err := source.Fetch(context.Background(), "products.json")
	require.NoError(t, err)
	require.Len(t, data, maxDocumentSize)
}

type countingSource struct {
	inner Source
	calls sync.Map
	total atomic.Int32
}

func (s *countingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.total.Add(1)
	n, _ := s.calls.LoadOrStore(name, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)
	return s.inner.Fetch(ctx, name)
}

func (s *countingSource) count(name string) int32 {
	n, ok := s.calls.Load(name)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func TestLoadCatalogSkipsConfig(t *testing.T) {
	t.Parallel()

	source := &countingSource{inner: NewDirSource(fstest.MapFS{
		"products.json": {Data: []byte(catalogJSON)},
		"config.json":   {Data: []byte(configJSON)},
	})}
	loader := NewLoader(source, DefaultDocuments())

	catalog, err := loader.LoadCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Products, 2)
	require.EqualValues(t, 1, source.count("products.json"))
	require.Zero(t, source.count("config.json"))
	require.EqualValues(t, 1, source.total.Load())
}

func TestLoadCatalogReportsFailure(t *testing.T) {
	t.Parallel()

	loader := NewLoader(NewDirSource(fstest.MapFS{}), DefaultDocuments())
	catalog, err := loader.LoadCatalog(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, catalog.Products)
	require.Empty(t, catalog.Products)
}
