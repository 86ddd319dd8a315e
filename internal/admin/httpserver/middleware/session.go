package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	appsession "github.com/faithfulaborisade1/kilkennyquads/internal/admin/session"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "admin.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and writes the
// cookie back before the first byte of the response leaves the handler.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				logger.Info("session expired: resetting")
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			sw := &sessionWriter{ResponseWriter: w, store: store, sess: sess, logger: logger}
			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.save()
		})
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}

type sessionWriter struct {
	http.ResponseWriter
	store  SessionStore
	sess   *appsession.Session
	logger *zap.Logger
	saved  bool
}

func (w *sessionWriter) save() {
	if w.saved {
		return
	}
	w.saved = true
	if err := w.store.Save(w.ResponseWriter, w.sess); err != nil {
		w.logger.Error("session save failed", zap.Error(err))
	}
}

func (w *sessionWriter) WriteHeader(status int) {
	w.save()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.save()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Flush() {
	w.save()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
