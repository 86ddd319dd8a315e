package contentstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

const seedCatalog = `{
  "products": [
    {"id": "quad-1", "name": "Quad One", "price": "€100", "visible": true}
  ]
}
`

func TestSyncerLoadedModeSurfacesConflict(t *testing.T) {
	t.Parallel()

	store := contentstore.NewMemoryStore(map[string][]byte{"products.json": []byte(seedCatalog)})
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeLoaded)
	ctx := context.Background()

	var catalog content.Catalog
	rev, err := syncer.Load(ctx, "tok", "products.json", &catalog)
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	store.Overwrite("products.json", []byte(`{"products":[]}`))

	catalog.Products[0].Name = "Renamed"
	_, err = syncer.Save(ctx, "tok", "products.json", catalog, "Update product: Renamed", rev)
	require.ErrorIs(t, err, contentstore.ErrConflict)

	data, _ := store.Content("products.json")
	require.JSONEq(t, `{"products":[]}`, string(data))
	require.Empty(t, store.Commits())
}

func TestSyncerRefetchModeOverwritesConcurrentChange(t *testing.T) {
	t.Parallel()

	store := contentstore.NewMemoryStore(map[string][]byte{"products.json": []byte(seedCatalog)})
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeRefetch)
	ctx := context.Background()

	var catalog content.Catalog
	rev, err := syncer.Load(ctx, "tok", "products.json", &catalog)
	require.NoError(t, err)

	store.Overwrite("products.json", []byte(`{"products":[]}`))

	catalog.Products[0].Name = "Renamed"
	newRev, err := syncer.Save(ctx, "tok", "products.json", catalog, "Update product: Renamed", rev)
	require.NoError(t, err)
	require.NotEqual(t, rev, newRev)

	data, _ := store.Content("products.json")
	reloaded, err := content.DecodeCatalog(data)
	require.NoError(t, err)
	require.Len(t, reloaded.Products, 1)
	require.Equal(t, "Renamed", reloaded.Products[0].Name)

	commits := store.Commits()
	require.Len(t, commits, 1)
	require.Equal(t, "Update product: Renamed", commits[0].Message)
}

func TestSyncerSequentialSavesChainRevisions(t *testing.T) {
	t.Parallel()

	store := contentstore.NewMemoryStore(map[string][]byte{"products.json": []byte(seedCatalog)})
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeLoaded)
	ctx := context.Background()

	var catalog content.Catalog
	rev, err := syncer.Load(ctx, "tok", "products.json", &catalog)
	require.NoError(t, err)

	_, err = catalog.ToggleVisible("quad-1")
	require.NoError(t, err)
	rev, err = syncer.Save(ctx, "tok", "products.json", catalog, "Toggle visibility: Quad One", rev)
	require.NoError(t, err)
	_, err = catalog.ToggleVisible("quad-1")
	require.NoError(t, err)
	_, err = syncer.Save(ctx, "tok", "products.json", catalog, "Toggle visibility: Quad One", rev)
	require.NoError(t, err)

	require.Len(t, store.Commits(), 2)
}

func TestSyncerRefetchCreatesMissingDocument(t *testing.T) {
	t.Parallel()

	store := contentstore.NewMemoryStore(nil)
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeRefetch)

	_, err := syncer.Save(context.Background(), "tok", "config.json", content.SiteConfig{}, "Update site settings", "")
	require.NoError(t, err)
	_, ok := store.Content("config.json")
	require.True(t, ok)
}

func TestSyncerLoadMalformedKeepsRevision(t *testing.T) {
	t.Parallel()

	store := contentstore.NewMemoryStore(map[string][]byte{"config.json": []byte("{not json")})
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeLoaded)

	var cfg content.SiteConfig
	rev, err := syncer.Load(context.Background(), "tok", "config.json", &cfg)
	require.ErrorIs(t, err, content.ErrMalformedDocument)
	require.NotEmpty(t, rev)
}

func TestSyncerPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("network down")
	store := contentstore.NewMemoryStore(map[string][]byte{"products.json": []byte(seedCatalog)})
	store.Fail("products.json", boom)
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeRefetch)

	var catalog content.Catalog
	_, err := syncer.Load(context.Background(), "tok", "products.json", &catalog)
	require.ErrorIs(t, err, boom)
	_, err = syncer.Save(context.Background(), "tok", "products.json", catalog, "msg", "")
	require.ErrorIs(t, err, boom)

	store.Fail("products.json", nil)
	_, err = syncer.Load(context.Background(), "tok", "products.json", &catalog)
	require.NoError(t, err)
}

func TestParseWriteMode(t *testing.T) {
	t.Parallel()

	mode, err := contentstore.ParseWriteMode("REFETCH")
	require.NoError(t, err)
	require.Equal(t, contentstore.WriteModeRefetch, mode)
	require.Equal(t, "refetch", mode.String())

	mode, err = contentstore.ParseWriteMode("")
	require.NoError(t, err)
	require.Equal(t, contentstore.WriteModeLoaded, mode)

	_, err = contentstore.ParseWriteMode("merge")
	require.Error(t, err)
}

func TestMemoryStoreTokensAndSeeding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(seedCatalog), 0o600))

	store, err := contentstore.NewMemoryStoreFromDir(dir, "products.json", "config.json")
	require.NoError(t, err)
	store.AddToken("good", contentstore.Account{Login: "editor"})

	account, err := store.VerifyCredential(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "editor", account.Login)

	_, err = store.VerifyCredential(context.Background(), "bad")
	require.ErrorIs(t, err, contentstore.ErrUnauthorized)

	_, err = store.Get(context.Background(), "good", "config.json")
	require.ErrorIs(t, err, contentstore.ErrNotFound)

	file, err := store.Get(context.Background(), "good", "products.json")
	require.NoError(t, err)
	require.Equal(t, seedCatalog, string(file.Content))
}
