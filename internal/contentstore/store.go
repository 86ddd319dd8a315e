// Package contentstore reads and writes the site's JSON documents in the
// remote repository that hosts them, authenticating each call with the
// editor's personal access token.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized indicates the remote rejected the credential.
	ErrUnauthorized = errors.New("contentstore: credential rejected")
	// ErrNotFound indicates the requested document does not exist on the branch.
	ErrNotFound = errors.New("contentstore: document not found")
	// ErrConflict indicates the revision marker sent with a write no longer
	// matches the document's current revision.
	ErrConflict = errors.New("contentstore: revision conflict")
)

// Revision is the opaque marker identifying one version of a document.
type Revision string

// Store exposes the document operations used by the editor.
type Store interface {
	// VerifyCredential validates token and returns the account it belongs to.
	VerifyCredential(ctx context.Context, token string) (*Account, error)
	// Get returns the decoded bytes and current revision of the document at path.
	Get(ctx context.Context, token, path string) (*File, error)
	// Put writes a new version of the document guarded by req.Revision.
	Put(ctx context.Context, token string, req PutRequest) (Revision, error)
}

// Account identifies the owner of a credential.
type Account struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// DisplayName returns the account name, falling back to the login.
func (a Account) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	return a.Login
}

// File is one document fetched from the store.
type File struct {
	Path     string
	Content  []byte
	Revision Revision
}

// PutRequest describes a single document write. An empty Revision creates the
// document.
type PutRequest struct {
	Path     string
	Message  string
	Content  []byte
	Revision Revision
}

// StatusError reports a non-success response from the remote API.
type StatusError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("contentstore: remote error (%d): %s", e.Status, msg)
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return ErrConflict
	default:
		return nil
	}
}
