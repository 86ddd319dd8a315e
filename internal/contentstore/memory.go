package contentstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Commit records one accepted write on a MemoryStore.
type Commit struct {
	Path     string
	Message  string
	Revision Revision
}

// MemoryStore is an in-process Store with the same compare-and-swap rules as
// the remote API. Revisions are git blob hashes of the content.
type MemoryStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	tokens  map[string]Account
	faults  map[string]error
	commits []Commit
}

// NewMemoryStore returns a store seeded with files. When no tokens are
// registered with AddToken any non-empty token is accepted.
func NewMemoryStore(files map[string][]byte) *MemoryStore {
	s := &MemoryStore{
		files:  make(map[string][]byte, len(files)),
		tokens: make(map[string]Account),
		faults: make(map[string]error),
	}
	for path, data := range files {
		s.files[cleanPath(path)] = append([]byte(nil), data...)
	}
	return s
}

// NewMemoryStoreFromDir seeds a store with the named files read from dir.
// Missing files are skipped so the editor can create them on first save.
func NewMemoryStoreFromDir(dir string, paths ...string) (*MemoryStore, error) {
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("contentstore: seed %s: %w", path, err)
		}
		files[path] = data
	}
	return NewMemoryStore(files), nil
}

// AddToken registers a credential and the account it resolves to.
func (s *MemoryStore) AddToken(token string, account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = account
}

// VerifyCredential implements Store.
func (s *MemoryStore) VerifyCredential(ctx context.Context, token string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorize(token)
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, token, path string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.authorize(token); err != nil {
		return nil, err
	}
	if err := s.faults[cleanPath(path)]; err != nil {
		return nil, err
	}
	data, ok := s.files[cleanPath(path)]
	if !ok {
		return nil, &StatusError{Status: http.StatusNotFound, Message: "Not Found"}
	}
	return &File{
		Path:     path,
		Content:  append([]byte(nil), data...),
		Revision: blobRevision(data),
	}, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, token string, req PutRequest) (Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.authorize(token); err != nil {
		return "", err
	}
	path := cleanPath(req.Path)
	if err := s.faults[path]; err != nil {
		return "", err
	}
	current, exists := s.files[path]
	switch {
	case exists && req.Revision != blobRevision(current):
		return "", &StatusError{Status: http.StatusConflict, Message: fmt.Sprintf("%s does not match %s", path, req.Revision)}
	case !exists && req.Revision != "":
		return "", &StatusError{Status: http.StatusConflict, Message: fmt.Sprintf("%s does not exist", path)}
	}
	data := append([]byte(nil), req.Content...)
	s.files[path] = data
	rev := blobRevision(data)
	s.commits = append(s.commits, Commit{Path: path, Message: req.Message, Revision: rev})
	return rev, nil
}

// Overwrite replaces a document outside the compare-and-swap protocol,
// standing in for another writer.
func (s *MemoryStore) Overwrite(path string, data []byte) Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := append([]byte(nil), data...)
	s.files[cleanPath(path)] = copied
	return blobRevision(copied)
}

// Fail makes every Get and Put on path return err until it is called again
// with a nil error.
func (s *MemoryStore) Fail(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, cleanPath(path))
		return
	}
	s.faults[cleanPath(path)] = err
}

// Content returns the current bytes of a document.
func (s *MemoryStore) Content(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[cleanPath(path)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Commits returns the accepted writes in order.
func (s *MemoryStore) Commits() []Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Commit, len(s.commits))
	copy(out, s.commits)
	return out
}

func (s *MemoryStore) authorize(token string) (*Account, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	if len(s.tokens) == 0 {
		return &Account{Login: "local"}, nil
	}
	account, ok := s.tokens[token]
	if !ok {
		return nil, &StatusError{Status: http.StatusUnauthorized, Message: "Bad credentials"}
	}
	return &account, nil
}

func cleanPath(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}

func blobRevision(data []byte) Revision {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return Revision(hex.EncodeToString(h.Sum(nil)))
}
