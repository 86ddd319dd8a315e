package site

import (
	"html/template"
	"strings"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/web/seo"
)

// Page is the populated showroom page.
type Page struct {
	Meta             seo.Meta
	StructuredData   template.JS
	Title            string
	BusinessName     string
	Tagline          string
	HeroTitle        string
	HeroSubtitle     string
	HeroButtonText   string
	ProductsTitle    string
	ProductsSubtitle string
	ContactTitle     string
	ContactSubtitle  string
	WhyChooseTitle   string
	Contact          ContactBlock
	Benefits         []string
	Footer           content.Footer
	Cards            []Card
}

// ContactBlock is the contact section with ready-made link targets.
type ContactBlock struct {
	Phone             string
	PhoneHref         template.URL
	Email             string
	EmailHref         template.URL
	AddressLine1      string
	AddressLine2      string
	HoursWeekday      string
	HoursSaturday     string
	EmailResponseTime string
	ShowroomNote      string
}

// Card is one visible product.
type Card struct {
	ID          string
	Name        string
	PriceLabel  string
	Description template.HTML
	Colors      string
	Features    []string
	Slider      Slider
}

// PageOptions carries deployment details that are not part of the content.
type PageOptions struct {
	CanonicalURL string
}

// BuildPage populates the page from the loaded documents. Hidden products are
// skipped; visible ones keep catalog order.
func BuildPage(data Data, opts PageOptions) Page {
	site := data.Config.Text()
	contact := data.Config.ContactInfo()
	addr := contact.AddressLines()
	hours := contact.OpeningHours()

	page := Page{
		Title:            site.Title,
		BusinessName:     site.BusinessName,
		Tagline:          site.Tagline,
		HeroTitle:        site.HeroTitle,
		HeroSubtitle:     site.HeroSubtitle,
		HeroButtonText:   site.HeroButtonText,
		ProductsTitle:    site.ProductsTitle,
		ProductsSubtitle: site.ProductsSubtitle,
		ContactTitle:     site.ContactTitle,
		ContactSubtitle:  site.ContactSubtitle,
		WhyChooseTitle:   site.WhyChooseTitle,
		Contact: ContactBlock{
			Phone:             contact.Phone,
			Email:             contact.Email,
			AddressLine1:      addr.Line1,
			AddressLine2:      addr.Line2,
			HoursWeekday:      hours.Weekday,
			HoursSaturday:     hours.Saturday,
			EmailResponseTime: contact.EmailResponseTime,
			ShowroomNote:      contact.ShowroomNote,
		},
		Benefits: append([]string(nil), data.Config.Benefits...),
		Footer:   data.Config.FooterText(),
	}
	if dial := contact.DialNumber(); dial != "" {
		page.Contact.PhoneHref = template.URL("tel:" + dial)
	}
	if email := strings.TrimSpace(contact.Email); email != "" {
		page.Contact.EmailHref = template.URL("mailto:" + email)
	}

	visible := data.Catalog.Visible()
	page.Cards = make([]Card, 0, len(visible))
	for _, p := range visible {
		page.Cards = append(page.Cards, BuildCard(p))
	}

	page.Meta = seo.NewMeta(site.Title, firstNonEmpty(site.HeroSubtitle, site.Tagline), opts.CanonicalURL, site.BusinessName, firstImage(visible))
	nodes := []map[string]any{seo.LocalBusiness(seo.Business{
		Name:         firstNonEmpty(site.BusinessName, site.Title),
		Description:  site.Tagline,
		URL:          opts.CanonicalURL,
		Telephone:    contact.DialNumber(),
		Email:        contact.Email,
		AddressLines: []string{addr.Line1, addr.Line2},
		OpeningHours: []string{hours.Weekday, hours.Saturday},
		Image:        firstImage(visible),
	})}
	for _, p := range visible {
		nodes = append(nodes, seo.Product(p.Name, p.Description, "", p.PrimaryImage()))
	}
	page.StructuredData = seo.Script(seo.Graph(nodes...))
	return page
}

// BuildCard renders one product card.
func BuildCard(p content.Product) Card {
	return Card{
		ID:          p.ID,
		Name:        p.Name,
		PriceLabel:  p.PriceLabel(),
		Description: RenderDescription(p.Description),
		Colors:      p.Colors,
		Features:    append([]string(nil), p.Features...),
		Slider:      NewSlider(p.ID, p.Name, p.Images),
	}
}

func firstImage(products []content.Product) string {
	for _, p := range products {
		if img := p.PrimaryImage(); img != "" {
			return img
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
