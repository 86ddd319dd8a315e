package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/httpx"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
	"github.com/faithfulaborisade1/kilkennyquads/internal/web/assets"
	"github.com/faithfulaborisade1/kilkennyquads/internal/web/site"
)

type app struct {
	loader   *site.Loader
	renderer *site.Renderer
	options  site.PageOptions
}

func newRouter(a *app, static fs.FS, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", http.StripPrefix("/assets", assets.WithCache(static)))

	r.Get("/", a.home)
	r.Get("/fragments/slider/{id}", a.slider)

	docs := a.loader.Documents()
	r.Get("/"+docs.Catalog, a.document(docs.Catalog))
	r.Get("/"+docs.Config, a.document(docs.Config))
	return r
}

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	result := a.loader.Load(r.Context())
	page := site.BuildPage(result.Data, a.options)

	var buf bytes.Buffer
	if err := a.renderer.Page(&buf, page); err != nil {
		observability.FromContext(r.Context()).Error("render page", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// slider answers the arrow buttons of a card with the slider moved by
// direction. Only visible products are addressable.
func (a *app) slider(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	active, _ := strconv.Atoi(r.URL.Query().Get("active"))
	direction, _ := strconv.Atoi(r.URL.Query().Get("direction"))

	catalog, _ := a.loader.LoadCatalog(r.Context())
	var slider *site.Slider
	for _, p := range catalog.Visible() {
		if p.ID == id {
			s := site.NewSlider(p.ID, p.Name, p.Images)
			s.Active = site.NextIndex(active, 0, len(s.Images))
			s = s.Change(direction)
			slider = &s
			break
		}
	}
	if slider == nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := a.renderer.Slider(&buf, *slider); err != nil {
		observability.FromContext(r.Context()).Error("render slider", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// document passes a published document through unchanged so the page and the
// raw JSON stay same-origin.
func (a *app) document(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := a.loader.Source().Fetch(r.Context(), name)
		switch {
		case errors.Is(err, site.ErrNotFound):
			httpx.WriteError(r.Context(), w, httpx.NewError("not_found", name+" is not published", http.StatusNotFound))
			return
		case err != nil:
			observability.FromContext(r.Context()).Warn("document unavailable", zap.String("document", name), zap.Error(err))
			httpx.WriteError(r.Context(), w, httpx.NewError("document_unavailable", "failed to load "+name, http.StatusBadGateway))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	}
}

// export renders the page once and writes it to path.
func (a *app) export(ctx context.Context, path string) error {
	result := a.loader.Load(ctx)
	var buf bytes.Buffer
	if err := a.renderer.Page(&buf, site.BuildPage(result.Data, a.options)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
