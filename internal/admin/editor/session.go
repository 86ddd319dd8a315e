// Package editor holds the per-login editing state of the admin dashboard:
// the loaded documents, their revision markers and the product being edited.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

// Paths names the two documents inside the repository.
type Paths struct {
	Catalog string
	Config  string
}

// DefaultPaths returns the conventional document locations.
func DefaultPaths() Paths {
	return Paths{Catalog: "products.json", Config: "config.json"}
}

// LoadResult reports the outcome of loading each document independently.
type LoadResult struct {
	CatalogErr error
	ConfigErr  error
}

// Err joins both failures.
func (r LoadResult) Err() error {
	return errors.Join(r.CatalogErr, r.ConfigErr)
}

// Session is the editing state for one signed-in editor. Operations on a
// session are serialised; different sessions only meet at the store.
type Session struct {
	mu sync.Mutex

	syncer     *contentstore.Syncer
	paths      Paths
	credential string
	now        func() time.Time

	catalog       content.Catalog
	catalogRev    contentstore.Revision
	catalogLoaded bool
	config        content.SiteConfig
	configRev     contentstore.Revision
	configLoaded  bool
	editingID     string

	// unix nanoseconds; read without mu so a sweep never waits on a save
	lastActivity atomic.Int64
}

// NewSession returns an empty session that authenticates with credential.
func NewSession(syncer *contentstore.Syncer, paths Paths, credential string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		syncer:     syncer,
		paths:      paths,
		credential: credential,
		now:        now,
		catalog:    content.Catalog{Products: []content.Product{}},
	}
	s.touch()
	return s
}

// LoadAll fetches the catalog and then the configuration. A failure keeps the
// previous in-memory value of that document and does not stop the other load.
func (s *Session) LoadAll(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	logger := observability.FromContext(ctx)
	var result LoadResult

	var catalog content.Catalog
	rev, err := s.syncer.Load(ctx, s.credential, s.paths.Catalog, &catalog)
	if err != nil {
		logger.Warn("catalog load failed", zap.String("path", s.paths.Catalog), zap.Error(err))
		result.CatalogErr = fmt.Errorf("load %s: %w", s.paths.Catalog, err)
	} else {
		if catalog.Products == nil {
			catalog.Products = []content.Product{}
		}
		s.catalog = catalog
		s.catalogRev = rev
		s.catalogLoaded = true
	}

	var cfg content.SiteConfig
	rev, err = s.syncer.Load(ctx, s.credential, s.paths.Config, &cfg)
	if err != nil {
		logger.Warn("config load failed", zap.String("path", s.paths.Config), zap.Error(err))
		result.ConfigErr = fmt.Errorf("load %s: %w", s.paths.Config, err)
	} else {
		s.config = cfg
		s.configRev = rev
		s.configLoaded = true
	}
	return result
}

// Products returns a copy of every product in catalog order.
func (s *Session) Products() []content.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Clone().Products
}

// Product returns a copy of the product with the given id.
func (s *Session) Product(id string) (content.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.catalog.Find(id)
	if !ok {
		return content.Product{}, content.ErrProductNotFound
	}
	return p.Clone(), nil
}

// Settings returns the flattened settings form values.
func (s *Session) Settings() content.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return content.SettingsFromConfig(s.config)
}

// Config returns a copy of the loaded configuration.
func (s *Session) Config() content.SiteConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// Loaded reports whether each document has been loaded at least once.
func (s *Session) Loaded() (catalog, config bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogLoaded, s.configLoaded
}

// Revisions returns the markers of the last successful load or write.
func (s *Session) Revisions() (catalog, config contentstore.Revision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogRev, s.configRev
}

// EditingID returns the id of the product open in the editor, if any.
func (s *Session) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// EditProduct opens the editor on the product with the given id.
func (s *Session) EditProduct(id string) (content.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	p, ok := s.catalog.Find(id)
	if !ok {
		return content.Product{}, content.ErrProductNotFound
	}
	s.editingID = p.ID
	return p.Clone(), nil
}

// CloseEditor clears the editing target. Unsaved form input is discarded.
func (s *Session) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = ""
}

// AddNewProduct appends a hidden placeholder product and opens it in the
// editor. Nothing is written until the product is saved.
func (s *Session) AddNewProduct() content.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	p := content.NewPlaceholderProduct(s.now())
	s.catalog.Append(p)
	s.editingID = p.ID
	return p.Clone()
}

// SaveProduct merges edit into the product with the given id and writes the
// catalog. On a failed write the edit stays in memory and the editor stays
// open.
func (s *Session) SaveProduct(ctx context.Context, id string, edit content.ProductEdit) (content.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	current, ok := s.catalog.Find(id)
	if !ok {
		return content.Product{}, content.ErrProductNotFound
	}
	updated := current.ApplyEdit(edit)
	if err := s.catalog.Replace(updated); err != nil {
		return content.Product{}, err
	}
	if err := s.writeCatalog(ctx, "Update product: "+updated.Name); err != nil {
		return updated.Clone(), err
	}
	s.editingID = ""
	return updated.Clone(), nil
}

// ToggleProduct flips the visibility of the product with the given id and
// writes the catalog.
func (s *Session) ToggleProduct(ctx context.Context, id string) (content.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	toggled, err := s.catalog.ToggleVisible(id)
	if err != nil {
		return content.Product{}, err
	}
	if err := s.writeCatalog(ctx, "Toggle visibility: "+toggled.Name); err != nil {
		return toggled.Clone(), err
	}
	return toggled.Clone(), nil
}

// DeleteProduct removes the product with the given id and writes the catalog.
// Confirmation is the caller's concern.
func (s *Session) DeleteProduct(ctx context.Context, id string) (content.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	removed, err := s.catalog.Remove(id)
	if err != nil {
		return content.Product{}, err
	}
	if s.editingID == removed.ID {
		s.editingID = ""
	}
	if err := s.writeCatalog(ctx, "Delete product: "+removed.Name); err != nil {
		return removed, err
	}
	return removed, nil
}

// SaveSettings applies the settings form to the configuration and writes it.
func (s *Session) SaveSettings(ctx context.Context, settings content.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.config.ApplySettings(settings)
	rev, err := s.syncer.Save(ctx, s.credential, s.paths.Config, s.config, "Update site settings", s.configRev)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.paths.Config, err)
	}
	s.configRev = rev
	s.configLoaded = true
	return nil
}

// LastActivity returns when the session was last used.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *Session) writeCatalog(ctx context.Context, message string) error {
	rev, err := s.syncer.Save(ctx, s.credential, s.paths.Catalog, s.catalog, message, s.catalogRev)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.paths.Catalog, err)
	}
	s.catalogRev = rev
	s.catalogLoaded = true
	return nil
}

func (s *Session) touch() {
	s.lastActivity.Store(s.now().UnixNano())
}
