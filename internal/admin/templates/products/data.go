package products

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
)

const (
	excerptLength    = 100
	placeholderImage = "/public/static/admin/no-image.svg"
)

// PageData is the full products tab.
type PageData struct {
	views.Layout
	Panel Panel
}

// FragmentData is the htmx response for a products action.
type FragmentData struct {
	Panel  Panel
	Status *views.Status
}

// Panel is the products list together with any open dialog.
type Panel struct {
	Rows      []Row
	Editor    *Editor
	Delete    *DeleteConfirm
	NewURL    string
	CSRFToken string
	LoadError string
}

// Row is one product in the admin list.
type Row struct {
	ID         string
	Name       string
	PriceLabel string
	Excerpt    string
	Colors     string
	Image      string
	Visible    bool
	EditURL    string
	ToggleURL  string
	DeleteURL  string
}

// Editor is the product edit dialog.
type Editor struct {
	ID          string
	Name        string
	Price       string
	Description string
	Colors      string
	Features    []string
	SaveURL     string
	FeaturesURL string
	CloseURL    string
	CSRFToken   string
}

// DeleteConfirm asks before a product is removed.
type DeleteConfirm struct {
	ID         string
	Name       string
	ConfirmURL string
	CSRFToken  string
}

// BuildPanel assembles the list for products.
func BuildPanel(basePath, csrf string, items []content.Product) Panel {
	rows := make([]Row, 0, len(items))
	for _, p := range items {
		rows = append(rows, buildRow(basePath, p))
	}
	return Panel{
		Rows:      rows,
		NewURL:    views.JoinPath(basePath, "/products/new"),
		CSRFToken: csrf,
	}
}

// BuildEditor fills the edit dialog from the product p.
func BuildEditor(basePath, csrf string, p content.Product) *Editor {
	return EditorFromEdit(basePath, csrf, p.ID, content.ProductEdit{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Colors:      p.Colors,
		Features:    p.Features,
	})
}

// EditorFromEdit fills the edit dialog from submitted form values.
func EditorFromEdit(basePath, csrf, id string, edit content.ProductEdit) *Editor {
	features := append([]string(nil), edit.Features...)
	if len(features) == 0 {
		features = []string{""}
	}
	return &Editor{
		ID:          id,
		Name:        edit.Name,
		Price:       edit.Price,
		Description: edit.Description,
		Colors:      edit.Colors,
		Features:    features,
		SaveURL:     productURL(basePath, id, ""),
		FeaturesURL: productURL(basePath, id, "/features"),
		CloseURL:    views.JoinPath(basePath, "/products/close"),
		CSRFToken:   csrf,
	}
}

// BuildDeleteConfirm prepares the confirmation for p.
func BuildDeleteConfirm(basePath, csrf string, p content.Product) *DeleteConfirm {
	return &DeleteConfirm{
		ID:         p.ID,
		Name:       p.Name,
		ConfirmURL: productURL(basePath, p.ID, "/delete"),
		CSRFToken:  csrf,
	}
}

// Index renders the full products page.
func Index(data PageData) templ.Component {
	return views.Render("products_index", data)
}

// Fragment renders the panel plus an out-of-band status banner.
func Fragment(data FragmentData) templ.Component {
	return views.Render("products_fragment", data)
}

func buildRow(basePath string, p content.Product) Row {
	image := p.PrimaryImage()
	if image == "" {
		image = placeholderImage
	}
	return Row{
		ID:         p.ID,
		Name:       p.Name,
		PriceLabel: p.PriceLabel(),
		Excerpt:    excerpt(p.Description),
		Colors:     p.Colors,
		Image:      image,
		Visible:    p.Visible,
		EditURL:    productURL(basePath, p.ID, "/edit"),
		ToggleURL:  productURL(basePath, p.ID, "/toggle"),
		DeleteURL:  productURL(basePath, p.ID, "/delete"),
	}
}

func productURL(basePath, id, suffix string) string {
	return views.JoinPath(basePath, "/products/"+url.PathEscape(id)+suffix)
}

func excerpt(description string) string {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) <= excerptLength {
		return description
	}
	runes := []rune(description)
	return strings.TrimSpace(string(runes[:excerptLength])) + "..."
}
