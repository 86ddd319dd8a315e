package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// DefaultTemplates returns the templates compiled into the binary.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer executes the page templates. In dev mode the templates are parsed
// again for every render so edits show without a restart.
type Renderer struct {
	fsys fs.FS
	dev  bool

	mu     sync.Mutex
	parsed *template.Template
}

// NewRenderer parses every *.tmpl file in fsys.
func NewRenderer(fsys fs.FS, dev bool) (*Renderer, error) {
	r := &Renderer{fsys: fsys, dev: dev}
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.parsed = t
	return r, nil
}

// Page renders the full showroom page.
func (r *Renderer) Page(w io.Writer, page Page) error {
	return r.execute(w, "page", page)
}

// Slider renders the slider fragment of one card.
func (r *Renderer) Slider(w io.Writer, slider Slider) error {
	return r.execute(w, "slider", slider)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("site: execute %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) templates() (*template.Template, error) {
	if !r.dev {
		return r.parsed, nil
	}
	t, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.parsed = t
	r.mu.Unlock()
	return t, nil
}

func (r *Renderer) parse() (*template.Template, error) {
	t, err := template.New("site").ParseFS(r.fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("site: parse templates: %w", err)
	}
	return t, nil
}
