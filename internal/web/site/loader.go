package site

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

// Documents names the two published documents.
type Documents struct {
	Catalog string
	Config  string
}

// DefaultDocuments returns the conventional document names.
func DefaultDocuments() Documents {
	return Documents{Catalog: "products.json", Config: "config.json"}
}

// Data is the content the page is built from.
type Data struct {
	Catalog content.Catalog
	Config  content.SiteConfig
}

// LoadResult carries the loaded data together with the failure, if any, of
// each document.
type LoadResult struct {
	Data       Data
	CatalogErr error
	ConfigErr  error
}

// Loader fetches both documents for one render.
type Loader struct {
	source Source
	docs   Documents
}

// NewLoader returns a Loader reading docs from source.
func NewLoader(source Source, docs Documents) *Loader {
	if docs.Catalog == "" {
		docs.Catalog = DefaultDocuments().Catalog
	}
	if docs.Config == "" {
		docs.Config = DefaultDocuments().Config
	}
	return &Loader{source: source, docs: docs}
}

// Documents returns the names the loader reads.
func (l *Loader) Documents() Documents {
	return l.docs
}

// Source returns the underlying document source.
func (l *Loader) Source() Source {
	return l.source
}

// Load fetches the catalog and the configuration concurrently. A document
// that cannot be fetched or parsed is left at its empty default and logged;
// the other document is unaffected.
func (l *Loader) Load(ctx context.Context) LoadResult {
	logger := observability.FromContext(ctx)
	result := LoadResult{Data: Data{Catalog: content.Catalog{Products: []content.Product{}}}}

	var g errgroup.Group
	g.Go(func() error {
		catalog, err := l.fetchCatalog(ctx)
		if err != nil {
			logger.Warn("catalog unavailable", zap.String("document", l.docs.Catalog), zap.Error(err))
			result.CatalogErr = err
			return nil
		}
		result.Data.Catalog = catalog
		return nil
	})
	g.Go(func() error {
		cfg, err := l.fetchConfig(ctx)
		if err != nil {
			logger.Warn("config unavailable", zap.String("document", l.docs.Config), zap.Error(err))
			result.ConfigErr = err
			return nil
		}
		result.Data.Config = cfg
		return nil
	})
	_ = g.Wait()
	return result
}

// LoadCatalog fetches only the catalog. A failure leaves an empty catalog
// alongside the error.
func (l *Loader) LoadCatalog(ctx context.Context) (content.Catalog, error) {
	catalog, err := l.fetchCatalog(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("catalog unavailable", zap.String("document", l.docs.Catalog), zap.Error(err))
		return content.Catalog{Products: []content.Product{}}, err
	}
	return catalog, nil
}

func (l *Loader) fetchCatalog(ctx context.Context) (content.Catalog, error) {
	data, err := l.source.Fetch(ctx, l.docs.Catalog)
	if err != nil {
		return content.Catalog{}, err
	}
	catalog, err := content.DecodeCatalog(data)
	if err != nil {
		return content.Catalog{}, fmt.Errorf("%s: %w", l.docs.Catalog, err)
	}
	return catalog, nil
}

func (l *Loader) fetchConfig(ctx context.Context) (content.SiteConfig, error) {
	data, err := l.source.Fetch(ctx, l.docs.Config)
	if err != nil {
		return content.SiteConfig{}, err
	}
	cfg, err := content.DecodeConfig(data)
	if err != nil {
		return content.SiteConfig{}, fmt.Errorf("%s: %w", l.docs.Config, err)
	}
	return cfg, nil
}
