package auth

import (
	"github.com/a-h/templ"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
)

// LoginPageData encapsulates rendering state for the admin login screen.
type LoginPageData struct {
	Message   string
	Error     string
	LoginPath string
	BasePath  string
	CSRFToken string
}

// LoginPage renders the credential form.
func LoginPage(data LoginPageData) templ.Component {
	return views.Render("login_page", data)
}
