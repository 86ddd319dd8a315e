package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

// CredentialVerifier is the subset of contentstore.Store used for sign-in.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, token string) (*contentstore.Account, error)
}

// StoreAuthenticator verifies tokens against the content repository.
type StoreAuthenticator struct {
	verifier CredentialVerifier
}

// NewStoreAuthenticator returns an Authenticator backed by verifier.
func NewStoreAuthenticator(verifier CredentialVerifier) *StoreAuthenticator {
	return &StoreAuthenticator{verifier: verifier}
}

// Authenticate verifies token and maps the repository account to a User.
func (a *StoreAuthenticator) Authenticate(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}
	account, err := a.verifier.VerifyCredential(ctx, token)
	if err != nil {
		if errors.Is(err, contentstore.ErrUnauthorized) {
			return nil, NewAuthError(ReasonTokenInvalid, err)
		}
		return nil, NewAuthError(ReasonUnavailable, err)
	}
	if account == nil {
		return nil, NewAuthError(ReasonTokenInvalid, ErrUnauthorized)
	}
	return &User{Login: account.Login, Name: account.Name, Token: token}, nil
}
