package ui

import (
	"errors"
	"path"
	"strings"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

const (
	msgProductSaved    = "Product updated successfully!"
	msgProductToggled  = "Product visibility updated!"
	msgProductDeleted  = "Product deleted successfully!"
	msgSettingsSaved   = "Settings saved successfully! Changes will appear on the site in 1-2 minutes."
	msgFeatureRequired = "Product must have at least one feature"
	msgBenefitRequired = "Must have at least one benefit"
	msgProductMissing  = "That product no longer exists. Reload the page to see the current list."
)

func loadFailure(filePath string) string {
	return "Failed to load " + path.Base(filePath)
}

// loadStatus reports the first failed document of result, if any.
func loadStatus(paths editor.Paths, result editor.LoadResult) *views.Status {
	switch {
	case result.CatalogErr != nil:
		return views.Failure(loadFailure(paths.Catalog))
	case result.ConfigErr != nil:
		return views.Failure(loadFailure(paths.Config))
	}
	return nil
}

// saveFailure renders a failed write. A conflict means the document moved on
// since it was loaded.
func saveFailure(err error) *views.Status {
	return views.Failure("Failed to save changes: " + saveReason(err))
}

func saveReason(err error) string {
	switch {
	case errors.Is(err, content.ErrProductNotFound):
		return msgProductMissing
	case errors.Is(err, contentstore.ErrConflict):
		return "the file was changed elsewhere since it was loaded. Reload the page to get the latest version."
	}
	var statusErr *contentstore.StatusError
	if errors.As(err, &statusErr) && strings.TrimSpace(statusErr.Message) != "" {
		return statusErr.Message
	}
	if errors.Is(err, contentstore.ErrUnauthorized) {
		return "the token was rejected"
	}
	return err.Error()
}
