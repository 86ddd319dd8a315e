// Package views renders the admin markup. Feature packages wrap the named
// templates defined here as templ components.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var pages = template.Must(template.New("admin").Funcs(template.FuncMap{
	"banner": func(s *Status, oob bool) Banner {
		return Banner{Status: s, OOB: oob}
	},
}).ParseFS(files, "html/*.html"))

// Render returns a component executing the named template with data.
func Render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// Status kinds understood by the banner.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusWarning = "warning"
)

// Status is the message shown in the save-status banner.
type Status struct {
	Kind    string
	Message string
}

// Success builds a success status.
func Success(message string) *Status {
	return &Status{Kind: StatusSuccess, Message: message}
}

// Failure builds an error status.
func Failure(message string) *Status {
	return &Status{Kind: StatusError, Message: message}
}

// Warning builds a warning status.
func Warning(message string) *Status {
	return &Status{Kind: StatusWarning, Message: message}
}

// Icon returns the glyph prefixed to the message.
func (s *Status) Icon() string {
	if s == nil {
		return ""
	}
	switch s.Kind {
	case StatusSuccess:
		return "✓"
	case StatusError:
		return "✗"
	default:
		return "!"
	}
}

// Banner is the template payload for the status banner. OOB marks it for an
// htmx out-of-band swap.
type Banner struct {
	Status *Status
	OOB    bool
}

// Layout carries the chrome shared by every signed-in page.
type Layout struct {
	Title       string
	BasePath    string
	CSRFToken   string
	Account     string
	Environment string
	ActiveTab   string
	Status      *Status
}

// ProductsURL links to the products tab.
func (l Layout) ProductsURL() string {
	return JoinPath(l.BasePath, "/")
}

// SettingsURL links to the settings tab.
func (l Layout) SettingsURL() string {
	return JoinPath(l.BasePath, "/settings")
}

// LogoutURL is the logout form target.
func (l Layout) LogoutURL() string {
	return JoinPath(l.BasePath, "/logout")
}

// JoinPath appends suffix to the admin base path.
func JoinPath(basePath, suffix string) string {
	base := strings.TrimSpace(basePath)
	if base == "" {
		base = "/admin"
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if base == "/" {
		return suffix
	}
	if suffix == "/" {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(base, "/") + suffix
}
