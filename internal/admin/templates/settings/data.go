package settings

import (
	"github.com/a-h/templ"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
)

// PageData is the full settings tab.
type PageData struct {
	views.Layout
	Form Form
}

// FragmentData is the htmx response for a settings action.
type FragmentData struct {
	Form   Form
	Status *views.Status
}

// Form is the site settings form.
type Form struct {
	Groups      []Group
	Benefits    []string
	SaveURL     string
	BenefitsURL string
	CSRFToken   string
	LoadError   string
}

// Group is one fieldset of the form.
type Group struct {
	Title  string
	Fields []Field
}

// Field is a single labelled input.
type Field struct {
	ID        string
	Name      string
	Label     string
	Value     string
	Type      string
	Multiline bool
}

// Index renders the full settings page.
func Index(data PageData) templ.Component {
	return views.Render("settings_index", data)
}

// Fragment renders the form plus an out-of-band status banner.
func Fragment(data FragmentData) templ.Component {
	return views.Render("settings_fragment", data)
}
