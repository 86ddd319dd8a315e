// Package ui serves the signed-in admin pages: the product list with its
// editor dialogs and the site settings form.
package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

var errNoEditor = errors.New("ui: request has no signed-in session")

// Dependencies wires the handlers to the editor state.
type Dependencies struct {
	Editors *editor.Registry
	Paths   editor.Paths
}

// Handlers groups the admin page handlers.
type Handlers struct {
	editors *editor.Registry
	paths   editor.Paths
}

// New returns handlers backed by deps.
func New(deps Dependencies) *Handlers {
	if deps.Editors == nil {
		panic("ui: editor registry is required")
	}
	paths := deps.Paths
	if paths.Catalog == "" || paths.Config == "" {
		paths = editor.DefaultPaths()
	}
	return &Handlers{editors: deps.Editors, paths: paths}
}

func (h *Handlers) session(r *http.Request) (*editor.Session, error) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return nil, errNoEditor
	}
	user, ok := custommw.UserFromContext(r.Context())
	if !ok {
		return nil, errNoEditor
	}
	return h.editors.Session(sess.ID(), user.Token), nil
}

// editorFor returns the editing state of the signed-in user, loading both
// documents the first time it is used.
func (h *Handlers) editorFor(r *http.Request) (*editor.Session, editor.LoadResult, error) {
	ed, err := h.session(r)
	if err != nil {
		return nil, editor.LoadResult{}, err
	}
	var result editor.LoadResult
	if catalog, config := ed.Loaded(); !catalog && !config {
		result = ed.LoadAll(r.Context())
	}
	return ed, result, nil
}

// reloadEditor discards in-memory edits and loads both documents again,
// capturing fresh revisions.
func (h *Handlers) reloadEditor(r *http.Request) (*editor.Session, editor.LoadResult, error) {
	ed, err := h.session(r)
	if err != nil {
		return nil, editor.LoadResult{}, err
	}
	result := ed.LoadAll(r.Context())
	ed.CloseEditor()
	return ed, result, nil
}

func (h *Handlers) layout(r *http.Request, title, tab string, status *views.Status) views.Layout {
	account := ""
	if user, ok := custommw.UserFromContext(r.Context()); ok {
		account = user.DisplayName()
	}
	if status == nil {
		status = popFlash(r)
	}
	return views.Layout{
		Title:       title,
		BasePath:    custommw.BasePathFromContext(r.Context()),
		CSRFToken:   custommw.CSRFTokenFromContext(r.Context()),
		Account:     account,
		Environment: custommw.EnvironmentFromContext(r.Context()),
		ActiveTab:   tab,
		Status:      status,
	}
}

// finish completes a write action. htmx requests receive the fragment with
// a toast; plain form posts are redirected on success and re-rendered on
// failure so the submitted values survive.
func finish(w http.ResponseWriter, r *http.Request, status *views.Status, redirect string, fragment, page func() templ.Component) {
	if custommw.IsHTMXRequest(r.Context()) {
		if status != nil {
			custommw.Toast(w, status.Message, status.Kind)
		}
		render(w, r, fragment())
		return
	}
	if status != nil && status.Kind == views.StatusSuccess && redirect != "" {
		if sess, ok := custommw.SessionFromContext(r.Context()); ok {
			sess.SetFlash(status.Kind, status.Message)
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	render(w, r, page())
}

func homePath(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	templ.Handler(component).ServeHTTP(w, r)
}

func popFlash(r *http.Request) *views.Status {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return nil
	}
	flash := sess.PopFlash()
	if flash == nil {
		return nil
	}
	return &views.Status{Kind: flash.Kind, Message: flash.Message}
}

func noEditor(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("editor unavailable", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
