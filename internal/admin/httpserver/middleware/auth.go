package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// User is the repository account operating the admin.
type User struct {
	Login string
	Name  string
	Token string
}

// DisplayName prefers the full name and falls back to the login.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Login
}

// Authenticator resolves an access token into a User.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates a request without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates the repository rejected the token.
	ReasonTokenInvalid = "token_invalid"
	// ReasonUnavailable indicates the repository could not be reached.
	ReasonUnavailable = "unavailable"
)

// Auth admits requests whose session carries a stored credential. The stored
// credential is trusted as-is; it was verified at sign-in and a revoked token
// surfaces as a failed load or save. Requests without a session credential may
// present a bearer token, which is verified through authenticator on every
// request and never stored.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			if user := sessionUser(r.Context()); user != nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" || authenticator == nil {
				logger.Info("auth failure", zap.String("reason", ReasonMissingToken))
				handleUnauthorized(w, r, loginPath, ReasonMissingToken)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil || user == nil {
				reason := ReasonTokenInvalid
				var authErr *AuthError
				if errors.As(err, &authErr) {
					if authErr.Reason != "" {
						reason = authErr.Reason
					}
					err = authErr.Err
				}
				if err == nil {
					err = ErrUnauthorized
				}
				logger.Info("auth failure", zap.String("reason", reason), zap.Error(err))
				handleUnauthorized(w, r, loginPath, reason)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

func sessionUser(ctx context.Context) *User {
	sess, ok := SessionFromContext(ctx)
	if !ok || sess.Destroyed() {
		return nil
	}
	credential := sess.Credential()
	if credential == "" {
		return nil
	}
	user := &User{Token: credential}
	if account := sess.Account(); account != nil {
		user.Login = account.Login
		user.Name = account.Name
	}
	return user
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	redirectURL := loginPath
	if reason == ReasonTokenInvalid {
		if u, err := url.Parse(loginPath); err == nil {
			q := u.Query()
			q.Set("reason", "invalid")
			u.RawQuery = q.Encode()
			redirectURL = u.String()
		}
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}
