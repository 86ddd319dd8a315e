package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/products"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

// ProductsPage renders the products tab after reloading both documents.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	ed, result, err := h.reloadEditor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	panel := h.panel(r, ed)
	if result.CatalogErr != nil {
		panel.LoadError = loadFailure(h.paths.Catalog)
	}
	render(w, r, products.Index(products.PageData{
		Layout: h.layout(r, "Products", "products", loadStatus(h.paths, result)),
		Panel:  panel,
	}))
}

// ProductEdit opens the editor on one product.
func (h *Handlers) ProductEdit(w http.ResponseWriter, r *http.Request) {
	ed, result, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	p, err := ed.EditProduct(productID(r))
	panel := h.panel(r, ed)
	status := loadStatus(h.paths, result)
	if err != nil {
		status = views.Failure(msgProductMissing)
	} else {
		panel.Editor = products.BuildEditor(custommw.BasePathFromContext(r.Context()), panel.CSRFToken, p)
	}
	h.respondProducts(w, r, panel, status)
}

// ProductSave merges the edit form into the product and writes the catalog.
func (h *Handlers) ProductSave(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := productID(r)
	edit := productEditFromForm(r.PostForm)

	_, err = ed.SaveProduct(r.Context(), id, edit)
	panel := h.panel(r, ed)
	if err != nil {
		observability.FromContext(r.Context()).Warn("product save failed", zap.String("product_id", id), zap.Error(err))
		if !errors.Is(err, content.ErrProductNotFound) {
			panel.Editor = products.EditorFromEdit(custommw.BasePathFromContext(r.Context()), panel.CSRFToken, id, edit)
		}
		h.respondProducts(w, r, panel, saveFailure(err))
		return
	}
	h.respondProducts(w, r, panel, views.Success(msgProductSaved))
}

// ProductFeatures adds or removes a feature row in the open editor. Nothing
// is written until the product is saved.
func (h *Handlers) ProductFeatures(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	edit := productEditFromForm(r.PostForm)
	var status *views.Status
	edit.Features, status = editEntries(r.PostForm, edit.Features, "", msgFeatureRequired)

	panel := h.panel(r, ed)
	panel.Editor = products.EditorFromEdit(custommw.BasePathFromContext(r.Context()), panel.CSRFToken, productID(r), edit)
	h.respondProducts(w, r, panel, status)
}

// ProductNew appends an unsaved placeholder product and opens the editor on it.
func (h *Handlers) ProductNew(w http.ResponseWriter, r *http.Request) {
	ed, result, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	p := ed.AddNewProduct()
	panel := h.panel(r, ed)
	panel.Editor = products.BuildEditor(custommw.BasePathFromContext(r.Context()), panel.CSRFToken, p)
	h.respondProducts(w, r, panel, loadStatus(h.paths, result))
}

// ProductClose dismisses the editor without saving.
func (h *Handlers) ProductClose(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	ed.CloseEditor()
	h.respondProducts(w, r, h.panel(r, ed), nil)
}

// ProductToggle flips a product's visibility and writes the catalog.
func (h *Handlers) ProductToggle(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	id := productID(r)
	status := views.Success(msgProductToggled)
	if _, err := ed.ToggleProduct(r.Context(), id); err != nil {
		observability.FromContext(r.Context()).Warn("product toggle failed", zap.String("product_id", id), zap.Error(err))
		status = saveFailure(err)
	}
	h.respondProducts(w, r, h.panel(r, ed), status)
}

// ProductDeleteConfirm asks before removing a product.
func (h *Handlers) ProductDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ed, result, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	panel := h.panel(r, ed)
	status := loadStatus(h.paths, result)
	p, err := ed.Product(productID(r))
	if err != nil {
		status = views.Failure(msgProductMissing)
	} else {
		panel.Delete = products.BuildDeleteConfirm(custommw.BasePathFromContext(r.Context()), panel.CSRFToken, p)
	}
	h.respondProducts(w, r, panel, status)
}

// ProductDelete removes the product once the dialog is confirmed.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		h.respondProducts(w, r, h.panel(r, ed), nil)
		return
	}
	id := productID(r)
	status := views.Success(msgProductDeleted)
	if _, err := ed.DeleteProduct(r.Context(), id); err != nil {
		observability.FromContext(r.Context()).Warn("product delete failed", zap.String("product_id", id), zap.Error(err))
		status = saveFailure(err)
	}
	h.respondProducts(w, r, h.panel(r, ed), status)
}

func (h *Handlers) panel(r *http.Request, ed *editor.Session) products.Panel {
	return products.BuildPanel(
		custommw.BasePathFromContext(r.Context()),
		custommw.CSRFTokenFromContext(r.Context()),
		ed.Products(),
	)
}

func (h *Handlers) respondProducts(w http.ResponseWriter, r *http.Request, panel products.Panel, status *views.Status) {
	finish(w, r, status, homePath(custommw.BasePathFromContext(r.Context())),
		func() templ.Component {
			return products.Fragment(products.FragmentData{Panel: panel, Status: status})
		},
		func() templ.Component {
			return products.Index(products.PageData{
				Layout: h.layout(r, "Products", "products", status),
				Panel:  panel,
			})
		},
	)
}

func productID(r *http.Request) string {
	raw := chi.URLParam(r, "productID")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func productEditFromForm(form url.Values) content.ProductEdit {
	return content.ProductEdit{
		Name:        strings.TrimSpace(form.Get("name")),
		Price:       strings.TrimSpace(form.Get("price")),
		Description: strings.TrimSpace(form.Get("description")),
		Colors:      strings.TrimSpace(form.Get("colors")),
		Features:    append([]string(nil), form["features"]...),
	}
}

// editEntries applies an add or remove button press to list. Removing the
// last entry is refused with a warning.
func editEntries(form url.Values, list []string, added, lastEntryMessage string) ([]string, *views.Status) {
	if form.Get("action") == "add" {
		return content.AppendEntry(list, added), nil
	}
	raw := form.Get("remove")
	if raw == "" {
		return list, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return list, nil
	}
	out, err := content.RemoveEntry(list, index)
	if errors.Is(err, content.ErrLastEntry) {
		return out, views.Warning(lastEntryMessage)
	}
	return out, nil
}
