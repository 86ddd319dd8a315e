package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/web/site"
)

const (
	testCatalog = `{"products":[
  {"id":"a","name":"Quad A","price":"","description":"Fast","colors":"Red","features":["4WD"],"images":["a1.jpg","a2.jpg","a3.jpg"],"visible":true},
  {"id":"b","name":"Quad B","price":"€1","description":"Hidden","colors":"Blue","features":["2WD"],"images":["b1.jpg"],"visible":false}
]}`
	testConfig = `{"site":{"title":"Kilkenny Quads","businessName":"Kilkenny Quads"},"contact":{"email":"info@example.com"}}`
)

func newTestServer(t *testing.T, files fstest.MapFS) *httptest.Server {
	t.Helper()

	renderer, err := site.NewRenderer(site.DefaultTemplates(), false)
	require.NoError(t, err)
	a := &app{
		loader:   site.NewLoader(site.NewDirSource(files), site.DefaultDocuments()),
		renderer: renderer,
	}
	static := fstest.MapFS{"styles.css": {Data: []byte("body{}")}}
	srv := httptest.NewServer(newRouter(a, static, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func fixtureFiles() fstest.MapFS {
	return fstest.MapFS{
		"products.json": {Data: []byte(testCatalog)},
		"config.json":   {Data: []byte(testConfig)},
	}
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHomeRendersVisibleProducts(t *testing.T) {
	srv := newTestServer(t, fixtureFiles())

	resp, body := get(t, srv, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".product-card").Length())
	require.Equal(t, "Price on request", doc.Find(".product-price").Text())
	require.Equal(t, "mailto:info@example.com", doc.Find("#contact a[href^='mailto:']").AttrOr("href", ""))
}

func TestHomeRendersWhenCatalogMissing(t *testing.T) {
	srv := newTestServer(t, fstest.MapFS{"config.json": {Data: []byte(testConfig)}})

	resp, body := get(t, srv, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 0, doc.Find(".product-card").Length())
	require.Equal(t, "Kilkenny Quads", doc.Find(".logo h1").Text())
}

func TestSliderFragmentWrapsAround(t *testing.T) {
	srv := newTestServer(t, fixtureFiles())

	resp, body := get(t, srv, "/fragments/slider/a?active=0&direction=-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "a3.jpg", doc.Find("img.active").AttrOr("src", ""))

	_, body = get(t, srv, "/fragments/slider/a?active=2&direction=1")
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, "a1.jpg", doc.Find("img.active").AttrOr("src", ""))
}

type recordingSource struct {
	site.Source
	mu      sync.Mutex
	fetched []string
}

func (s *recordingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, name)
	s.mu.Unlock()
	return s.Source.Fetch(ctx, name)
}

func TestSliderFragmentReadsCatalogOnly(t *testing.T) {
	renderer, err := site.NewRenderer(site.DefaultTemplates(), false)
	require.NoError(t, err)
	source := &recordingSource{Source: site.NewDirSource(fixtureFiles())}
	a := &app{
		loader:   site.NewLoader(source, site.DefaultDocuments()),
		renderer: renderer,
	}
	srv := httptest.NewServer(newRouter(a, fstest.MapFS{}, zap.NewNop()))
	t.Cleanup(srv.Close)

	resp, _ := get(t, srv, "/fragments/slider/a?active=0&direction=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	source.mu.Lock()
	defer source.mu.Unlock()
	require.Equal(t, []string{"products.json"}, source.fetched)
}

func TestSliderFragmentHiddenProduct(t *testing.T) {
	srv := newTestServer(t, fixtureFiles())

	resp, _ := get(t, srv, "/fragments/slider/b?active=0&direction=1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentPassthrough(t *testing.T) {
	srv := newTestServer(t, fstest.MapFS{"products.json": {Data: []byte(testCatalog)}})

	resp, body := get(t, srv, "/products.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, testCatalog, body)

	resp, body = get(t, srv, "/config.json")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	require.Equal(t, "not_found", envelope["error"])
}

func TestHealthzAndAssets(t *testing.T) {
	srv := newTestServer(t, fixtureFiles())

	resp, body := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body)

	resp, body = get(t, srv, "/assets/styles.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "body{}", body)
	require.NotEmpty(t, resp.Header.Get("ETag"))
}

func TestExportWritesPage(t *testing.T) {
	renderer, err := site.NewRenderer(site.DefaultTemplates(), false)
	require.NoError(t, err)
	a := &app{
		loader:   site.NewLoader(site.NewDirSource(fixtureFiles()), site.DefaultDocuments()),
		renderer: renderer,
		options:  site.PageOptions{CanonicalURL: "https://example.com/"},
	}

	path := filepath.Join(t.TempDir(), "out", "index.html")
	require.NoError(t, a.export(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `<link rel="canonical" href="https://example.com/">`)
	require.Contains(t, string(data), "Quad A")
	require.NotContains(t, string(data), "Quad B")
}
