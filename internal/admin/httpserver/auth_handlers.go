package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	appsession "github.com/faithfulaborisade1/kilkennyquads/internal/admin/session"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/auth"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

const (
	msgInvalidToken = "Invalid token. Please check and try again."
	msgMissingToken = "Please enter your GitHub token."
	msgUnavailable  = "Could not reach GitHub. Please try again in a moment."
	msgLoggedOut    = "You have been logged out."
	msgRejected     = "Your token was rejected. Please sign in again."
)

type authHandlers struct {
	authenticator custommw.Authenticator
	editors       *editor.Registry
	basePath      string
	loginPath     string
}

func newAuthHandlers(authenticator custommw.Authenticator, editors *editor.Registry, basePath, loginPath string) *authHandlers {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	return &authHandlers{
		authenticator: authenticator,
		editors:       editors,
		basePath:      basePath,
		loginPath:     loginPath,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, h.homePath(), http.StatusFound)
		return
	}
	h.renderLoginPage(w, r, auth.LoginPageData{Message: messageForQuery(r.URL.Query())}, http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderLoginPage(w, r, auth.LoginPageData{Error: msgInvalidToken}, http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" {
		h.renderLoginPage(w, r, auth.LoginPageData{Error: msgMissingToken}, http.StatusBadRequest)
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), token)
	if err != nil || user == nil {
		logger.Info("admin login failed", zap.Error(err))
		status := http.StatusUnauthorized
		message := msgInvalidToken
		var authErr *custommw.AuthError
		if errors.As(err, &authErr) && authErr.Reason == custommw.ReasonUnavailable {
			status = http.StatusBadGateway
			message = msgUnavailable
		}
		h.renderLoginPage(w, r, auth.LoginPageData{Error: message}, status)
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if h.editors != nil {
			h.editors.Drop(sess.ID())
		}
		sess.SignIn(token, appsession.Account{Login: user.Login, Name: user.Name})
	}
	logger.Info("admin login", zap.String("login", user.Login))
	custommw.Redirect(w, r, h.homePath())
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if h.editors != nil {
			h.editors.Drop(sess.ID())
		}
		sess.Destroy()
	}
	custommw.Redirect(w, r, h.loginPath+"?"+url.Values{"status": {"logged_out"}}.Encode())
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	data.LoginPath = h.loginPath
	data.BasePath = h.basePath
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	templ.Handler(auth.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	return ok && !sess.Destroyed() && sess.Credential() != ""
}

func (h *authHandlers) homePath() string {
	if h.basePath == "/" {
		return "/"
	}
	return h.basePath + "/"
}

func messageForQuery(q url.Values) string {
	if q.Get("status") == "logged_out" {
		return msgLoggedOut
	}
	if q.Get("reason") == "invalid" {
		return msgRejected
	}
	return ""
}
