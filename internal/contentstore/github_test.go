package contentstore_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

func newGitHubStore(t *testing.T, handler http.HandlerFunc) *contentstore.GitHubStore {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store, err := contentstore.NewGitHubStore(contentstore.GitHubOptions{
		BaseURL: ts.URL,
		Owner:   "kq",
		Repo:    "site",
		Branch:  "main",
	}, ts.Client())
	require.NoError(t, err)
	return store
}

func TestGitHubStoreVerifyCredential(t *testing.T) {
	t.Parallel()

	var receivedAuth, receivedAccept string
	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		receivedAuth = r.Header.Get("Authorization")
		receivedAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octo","name":"Octo Cat"}`))
	})

	account, err := store.VerifyCredential(context.Background(), "ghp_valid")
	require.NoError(t, err)
	require.Equal(t, "Bearer ghp_valid", receivedAuth)
	require.Equal(t, "application/vnd.github.v3+json", receivedAccept)
	require.Equal(t, "octo", account.Login)
	require.Equal(t, "Octo Cat", account.DisplayName())
}

func TestGitHubStoreVerifyCredentialRejected(t *testing.T) {
	t.Parallel()

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := store.VerifyCredential(context.Background(), "ghp_wrong")
	require.ErrorIs(t, err, contentstore.ErrUnauthorized)

	var statusErr *contentstore.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, "Bad credentials", statusErr.Message)

	_, err = store.VerifyCredential(context.Background(), "  ")
	require.ErrorIs(t, err, contentstore.ErrUnauthorized)
}

func TestGitHubStoreGetDecodesWrappedBase64(t *testing.T) {
	t.Parallel()

	doc := `{"products":[{"id":"quad-1","name":"Quad","visible":true}]}`
	encoded := base64.StdEncoding.EncodeToString([]byte(doc))
	wrapped := encoded[:20] + "\n" + encoded[20:] + "\n"

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/kq/site/contents/products.json", r.URL.Path)
		require.Equal(t, "main", r.URL.Query().Get("ref"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"path":     "products.json",
			"sha":      "abc123",
			"encoding": "base64",
			"content":  wrapped,
		})
	})

	file, err := store.Get(context.Background(), "tok", "products.json")
	require.NoError(t, err)
	require.Equal(t, contentstore.Revision("abc123"), file.Revision)
	require.JSONEq(t, doc, string(file.Content))
}

func TestGitHubStoreGetRejectsInvalidBase64(t *testing.T) {
	t.Parallel()

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"file","sha":"x","content":"!!!not-base64"}`))
	})

	_, err := store.Get(context.Background(), "tok", "config.json")
	require.ErrorIs(t, err, content.ErrMalformedDocument)
}

func TestGitHubStoreGetNotFound(t *testing.T) {
	t.Parallel()

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := store.Get(context.Background(), "tok", "config.json")
	require.ErrorIs(t, err, contentstore.ErrNotFound)
}

func TestGitHubStorePut(t *testing.T) {
	t.Parallel()

	var body map[string]string
	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/repos/kq/site/contents/products.json", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":{"sha":"def456"},"commit":{"sha":"c1"}}`))
	})

	rev, err := store.Put(context.Background(), "tok", contentstore.PutRequest{
		Path:     "products.json",
		Message:  "Update product: Quad",
		Content:  []byte("{}\n"),
		Revision: "abc123",
	})
	require.NoError(t, err)
	require.Equal(t, contentstore.Revision("def456"), rev)
	require.Equal(t, "Update product: Quad", body["message"])
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("{}\n")), body["content"])
	require.Equal(t, "abc123", body["sha"])
	require.Equal(t, "main", body["branch"])
}

func TestGitHubStorePutConflict(t *testing.T) {
	t.Parallel()

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"products.json does not match abc123"}`))
	})

	_, err := store.Put(context.Background(), "tok", contentstore.PutRequest{Path: "products.json", Revision: "abc123"})
	require.ErrorIs(t, err, contentstore.ErrConflict)
	require.Contains(t, err.Error(), "does not match")
}

func TestGitHubStoreServerErrorCarriesMessage(t *testing.T) {
	t.Parallel()

	store := newGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Invalid request."}`))
	})

	_, err := store.Put(context.Background(), "tok", contentstore.PutRequest{Path: "config.json"})
	var statusErr *contentstore.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnprocessableEntity, statusErr.Status)
	require.False(t, errors.Is(err, contentstore.ErrConflict))
	require.Contains(t, err.Error(), "Invalid request.")
}

func TestNewGitHubStoreValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := contentstore.NewGitHubStore(contentstore.GitHubOptions{BaseURL: "https://api.github.com"}, nil)
	require.Error(t, err)

	store, err := contentstore.NewGitHubStore(contentstore.GitHubOptions{BaseURL: "https://api.github.com", Owner: "o", Repo: "r"}, nil)
	require.NoError(t, err)
	require.Equal(t, "main", store.Branch())
}
