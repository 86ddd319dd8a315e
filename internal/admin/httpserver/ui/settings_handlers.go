package ui

import (
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/settings"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/templates/views"
	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

const newBenefit = "New benefit"

type settingsField struct {
	name      string
	label     string
	kind      string
	multiline bool
	value     func(*content.Settings) *string
}

type settingsGroup struct {
	title  string
	fields []settingsField
}

var settingsGroups = []settingsGroup{
	{title: "Site Branding", fields: []settingsField{
		{name: "businessName", label: "Business Name", value: func(s *content.Settings) *string { return &s.BusinessName }},
		{name: "siteTagline", label: "Tagline", value: func(s *content.Settings) *string { return &s.Tagline }},
		{name: "siteTitle", label: "Page Title", value: func(s *content.Settings) *string { return &s.Title }},
	}},
	{title: "Hero Section", fields: []settingsField{
		{name: "heroTitle", label: "Hero Title", value: func(s *content.Settings) *string { return &s.HeroTitle }},
		{name: "heroSubtitle", label: "Hero Subtitle", multiline: true, value: func(s *content.Settings) *string { return &s.HeroSubtitle }},
		{name: "heroButtonText", label: "Button Text", value: func(s *content.Settings) *string { return &s.HeroButtonText }},
	}},
	{title: "Products Section", fields: []settingsField{
		{name: "productsTitle", label: "Section Title", value: func(s *content.Settings) *string { return &s.ProductsTitle }},
		{name: "productsSubtitle", label: "Section Subtitle", value: func(s *content.Settings) *string { return &s.ProductsSubtitle }},
	}},
	{title: "Contact Section", fields: []settingsField{
		{name: "contactTitle", label: "Section Title", value: func(s *content.Settings) *string { return &s.ContactTitle }},
		{name: "contactSubtitle", label: "Section Subtitle", value: func(s *content.Settings) *string { return &s.ContactSubtitle }},
		{name: "whyChooseTitle", label: "Why Choose Us Title", value: func(s *content.Settings) *string { return &s.WhyChooseTitle }},
	}},
	{title: "Contact Information", fields: []settingsField{
		{name: "contactPhone", label: "Phone", kind: "tel", value: func(s *content.Settings) *string { return &s.Phone }},
		{name: "contactEmail", label: "Email", kind: "email", value: func(s *content.Settings) *string { return &s.Email }},
		{name: "addressLine1", label: "Address Line 1", value: func(s *content.Settings) *string { return &s.AddressLine1 }},
		{name: "addressLine2", label: "Address Line 2", value: func(s *content.Settings) *string { return &s.AddressLine2 }},
	}},
	{title: "Business Hours", fields: []settingsField{
		{name: "hoursWeekday", label: "Weekdays", value: func(s *content.Settings) *string { return &s.HoursWeekday }},
		{name: "hoursSaturday", label: "Saturday", value: func(s *content.Settings) *string { return &s.HoursSaturday }},
		{name: "emailResponseTime", label: "Email Response Time", value: func(s *content.Settings) *string { return &s.EmailResponseTime }},
		{name: "showroomNote", label: "Showroom Note", multiline: true, value: func(s *content.Settings) *string { return &s.ShowroomNote }},
	}},
	{title: "Footer", fields: []settingsField{
		{name: "footerCopyright", label: "Copyright", value: func(s *content.Settings) *string { return &s.FooterCopyright }},
		{name: "footerTagline", label: "Footer Tagline", value: func(s *content.Settings) *string { return &s.FooterTagline }},
	}},
}

// SettingsPage renders the settings tab after reloading both documents.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	ed, result, err := h.reloadEditor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	form := h.settingsForm(r, ed.Settings())
	if result.ConfigErr != nil {
		form.LoadError = loadFailure(h.paths.Config)
	}
	render(w, r, settings.Index(settings.PageData{
		Layout: h.layout(r, "Site Settings", "settings", loadStatus(h.paths, result)),
		Form:   form,
	}))
}

// SettingsSave writes every settings field to the site configuration.
func (h *Handlers) SettingsSave(w http.ResponseWriter, r *http.Request) {
	ed, _, err := h.editorFor(r)
	if err != nil {
		noEditor(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	submitted := settingsFromForm(r.PostForm)

	status := views.Success(msgSettingsSaved)
	form := h.settingsForm(r, submitted)
	if err := ed.SaveSettings(r.Context(), submitted); err != nil {
		observability.FromContext(r.Context()).Warn("settings save failed", zap.Error(err))
		status = saveFailure(err)
	} else {
		form = h.settingsForm(r, ed.Settings())
	}
	h.respondSettings(w, r, form, status)
}

// SettingsBenefits adds or removes a benefit row. Nothing is written until
// the form is saved.
func (h *Handlers) SettingsBenefits(w http.ResponseWriter, r *http.Request) {
	if _, _, err := h.editorFor(r); err != nil {
		noEditor(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	submitted := settingsFromForm(r.PostForm)
	var status *views.Status
	submitted.Benefits, status = editEntries(r.PostForm, submitted.Benefits, newBenefit, msgBenefitRequired)
	h.respondSettings(w, r, h.settingsForm(r, submitted), status)
}

func (h *Handlers) settingsForm(r *http.Request, values content.Settings) settings.Form {
	base := custommw.BasePathFromContext(r.Context())
	groups := make([]settings.Group, 0, len(settingsGroups))
	for _, g := range settingsGroups {
		group := settings.Group{Title: g.title}
		for _, f := range g.fields {
			kind := f.kind
			if kind == "" {
				kind = "text"
			}
			group.Fields = append(group.Fields, settings.Field{
				ID:        f.name,
				Name:      f.name,
				Label:     f.label,
				Value:     *f.value(&values),
				Type:      kind,
				Multiline: f.multiline,
			})
		}
		groups = append(groups, group)
	}
	return settings.Form{
		Groups:      groups,
		Benefits:    append([]string(nil), values.Benefits...),
		SaveURL:     views.JoinPath(base, "/settings"),
		BenefitsURL: views.JoinPath(base, "/settings/benefits"),
		CSRFToken:   custommw.CSRFTokenFromContext(r.Context()),
	}
}

func (h *Handlers) respondSettings(w http.ResponseWriter, r *http.Request, form settings.Form, status *views.Status) {
	finish(w, r, status, views.JoinPath(custommw.BasePathFromContext(r.Context()), "/settings"),
		func() templ.Component {
			return settings.Fragment(settings.FragmentData{Form: form, Status: status})
		},
		func() templ.Component {
			return settings.Index(settings.PageData{
				Layout: h.layout(r, "Site Settings", "settings", status),
				Form:   form,
			})
		},
	)
}

func settingsFromForm(form url.Values) content.Settings {
	var s content.Settings
	for _, g := range settingsGroups {
		for _, f := range g.fields {
			*f.value(&s) = form.Get(f.name)
		}
	}
	s.Benefits = append([]string(nil), form["benefits"]...)
	return s
}
