package httpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	appsession "github.com/faithfulaborisade1/kilkennyquads/internal/admin/session"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

func TestWriteTimeoutOutlastsRequestTimeout(t *testing.T) {
	sessions, err := appsession.NewManager(appsession.Config{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("abcdef0123456789abcdef0123456789"),
	})
	require.NoError(t, err)
	store := contentstore.NewMemoryStore(nil)
	registry := editor.NewRegistry(contentstore.NewSyncer(store, contentstore.WriteModeLoaded), editor.DefaultPaths())

	cases := []struct {
		name       string
		configured time.Duration
		want       time.Duration
	}{
		{name: "unset", configured: 0, want: RequestTimeout + 15*time.Second},
		{name: "shorter than request timeout", configured: 30 * time.Second, want: RequestTimeout + 15*time.Second},
		{name: "longer", configured: 5 * time.Minute, want: 5 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := New(Config{
				Address:       ":0",
				Authenticator: custommw.NewStoreAuthenticator(store),
				Sessions:      sessions,
				Editors:       registry,
				WriteTimeout:  tc.configured,
			})
			require.Equal(t, tc.want, srv.WriteTimeout)
			require.Greater(t, srv.WriteTimeout, RequestTimeout)
		})
	}
}
