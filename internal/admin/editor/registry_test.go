package editor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

func TestRegistryReusesAndResetsSessions(t *testing.T) {
	t.Parallel()

	syncer := contentstore.NewSyncer(contentstore.NewMemoryStore(nil), contentstore.WriteModeLoaded)
	reg := editor.NewRegistry(syncer, editor.DefaultPaths())

	first := reg.Session("sid-1", "tok")
	require.Same(t, first, reg.Session("sid-1", "tok"))
	require.NotSame(t, first, reg.Session("sid-1", "other-tok"))
	require.NotSame(t, first, reg.Session("sid-2", "tok"))
	require.Equal(t, 2, reg.Len())

	reg.Drop("sid-1")
	require.Equal(t, 1, reg.Len())
}

func TestRegistrySweepDropsIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	syncer := contentstore.NewSyncer(contentstore.NewMemoryStore(nil), contentstore.WriteModeLoaded)
	reg := editor.NewRegistry(syncer, editor.DefaultPaths(), editor.WithClock(clock), editor.WithIdleTimeout(time.Hour))

	reg.Session("old", "tok")
	now = now.Add(2 * time.Hour)
	reg.Session("fresh", "tok")

	require.Equal(t, 1, reg.Sweep())
	require.Equal(t, 1, reg.Len())
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	t.Parallel()

	syncer := contentstore.NewSyncer(contentstore.NewMemoryStore(nil), contentstore.WriteModeLoaded)
	reg := editor.NewRegistry(syncer, editor.DefaultPaths())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type blockingStore struct {
	*contentstore.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Put(ctx context.Context, token string, req contentstore.PutRequest) (contentstore.Revision, error) {
	close(s.entered)
	<-s.release
	return s.MemoryStore.Put(ctx, token, req)
}

func TestRegistryStaysAvailableDuringSlowSave(t *testing.T) {
	t.Parallel()

	store := &blockingStore{
		MemoryStore: contentstore.NewMemoryStore(map[string][]byte{
			"products.json": []byte(catalogJSON),
			"config.json":   []byte(configJSON),
		}),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	syncer := contentstore.NewSyncer(store, contentstore.WriteModeLoaded)
	reg := editor.NewRegistry(syncer, editor.DefaultPaths())

	busy := reg.Session("s1", "tok")
	require.NoError(t, busy.LoadAll(context.Background()).Err())

	saved := make(chan error, 1)
	go func() {
		_, err := busy.ToggleProduct(context.Background(), "quad-a")
		saved <- err
	}()
	<-store.entered

	done := make(chan int, 1)
	go func() {
		removed := reg.Sweep()
		reg.Session("s2", "tok2")
		done <- removed
	}()

	select {
	case removed := <-done:
		require.Zero(t, removed)
	case <-time.After(time.Second):
		close(store.release)
		<-saved
		t.Fatal("registry blocked behind an in-flight save")
	}
	require.Equal(t, 2, reg.Len())

	close(store.release)
	require.NoError(t, <-saved)
}
