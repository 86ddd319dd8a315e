package content

import "strings"

// SiteConfig is the in-memory form of config.json. Every group is optional;
// use the accessor methods to read with fallbacks instead of nil checks.
type SiteConfig struct {
	Site     *SiteText `json:"site,omitempty"`
	Contact  *Contact  `json:"contact,omitempty"`
	Benefits []string  `json:"benefits,omitempty"`
	Footer   *Footer   `json:"footer,omitempty"`
}

// SiteText holds page-level copy: branding, hero and section headings.
type SiteText struct {
	Title            string `json:"title,omitempty"`
	BusinessName     string `json:"businessName,omitempty"`
	Tagline          string `json:"tagline,omitempty"`
	HeroTitle        string `json:"heroTitle,omitempty"`
	HeroSubtitle     string `json:"heroSubtitle,omitempty"`
	HeroButtonText   string `json:"heroButtonText,omitempty"`
	ProductsTitle    string `json:"productsTitle,omitempty"`
	ProductsSubtitle string `json:"productsSubtitle,omitempty"`
	ContactTitle     string `json:"contactTitle,omitempty"`
	ContactSubtitle  string `json:"contactSubtitle,omitempty"`
	WhyChooseTitle   string `json:"whyChooseTitle,omitempty"`
}

// Contact groups the showroom contact details.
type Contact struct {
	Phone             string   `json:"phone,omitempty"`
	PhoneFormatted    string   `json:"phoneFormatted,omitempty"`
	Email             string   `json:"email,omitempty"`
	Address           *Address `json:"address,omitempty"`
	Hours             *Hours   `json:"hours,omitempty"`
	EmailResponseTime string   `json:"emailResponseTime,omitempty"`
	ShowroomNote      string   `json:"showroomNote,omitempty"`
}

// Address is a two-line postal address.
type Address struct {
	Line1 string `json:"line1,omitempty"`
	Line2 string `json:"line2,omitempty"`
}

// Hours lists opening hours.
type Hours struct {
	Weekday  string `json:"weekday,omitempty"`
	Saturday string `json:"saturday,omitempty"`
}

// Footer holds the footer copy.
type Footer struct {
	Copyright string `json:"copyright,omitempty"`
	Tagline   string `json:"tagline,omitempty"`
}

// Text returns the site text group or its zero value.
func (c SiteConfig) Text() SiteText {
	if c.Site == nil {
		return SiteText{}
	}
	return *c.Site
}

// ContactInfo returns the contact group or its zero value.
func (c SiteConfig) ContactInfo() Contact {
	if c.Contact == nil {
		return Contact{}
	}
	return *c.Contact
}

// AddressLines returns the address group or its zero value.
func (c Contact) AddressLines() Address {
	if c.Address == nil {
		return Address{}
	}
	return *c.Address
}

// OpeningHours returns the hours group or its zero value.
func (c Contact) OpeningHours() Hours {
	if c.Hours == nil {
		return Hours{}
	}
	return *c.Hours
}

// DialNumber is the value used for tel: links.
func (c Contact) DialNumber() string {
	if v := strings.TrimSpace(c.PhoneFormatted); v != "" {
		return v
	}
	return strings.TrimSpace(c.Phone)
}

// FooterText returns the footer group or its zero value.
func (c SiteConfig) FooterText() Footer {
	if c.Footer == nil {
		return Footer{}
	}
	return *c.Footer
}

// Clone returns a deep copy of the configuration.
func (c SiteConfig) Clone() SiteConfig {
	out := SiteConfig{Benefits: cloneStrings(c.Benefits)}
	if c.Site != nil {
		site := *c.Site
		out.Site = &site
	}
	if c.Contact != nil {
		contact := *c.Contact
		if c.Contact.Address != nil {
			addr := *c.Contact.Address
			contact.Address = &addr
		}
		if c.Contact.Hours != nil {
			hours := *c.Contact.Hours
			contact.Hours = &hours
		}
		out.Contact = &contact
	}
	if c.Footer != nil {
		footer := *c.Footer
		out.Footer = &footer
	}
	return out
}

// Settings is the flat field set edited by the settings form.
type Settings struct {
	BusinessName      string
	Tagline           string
	Title             string
	HeroTitle         string
	HeroSubtitle      string
	HeroButtonText    string
	ProductsTitle     string
	ProductsSubtitle  string
	ContactTitle      string
	ContactSubtitle   string
	WhyChooseTitle    string
	Phone             string
	Email             string
	AddressLine1      string
	AddressLine2      string
	HoursWeekday      string
	HoursSaturday     string
	EmailResponseTime string
	ShowroomNote      string
	FooterCopyright   string
	FooterTagline     string
	Benefits          []string
}

// SettingsFromConfig flattens the configuration into form values.
func SettingsFromConfig(c SiteConfig) Settings {
	site := c.Text()
	contact := c.ContactInfo()
	addr := contact.AddressLines()
	hours := contact.OpeningHours()
	footer := c.FooterText()
	return Settings{
		BusinessName:      site.BusinessName,
		Tagline:           site.Tagline,
		Title:             site.Title,
		HeroTitle:         site.HeroTitle,
		HeroSubtitle:      site.HeroSubtitle,
		HeroButtonText:    site.HeroButtonText,
		ProductsTitle:     site.ProductsTitle,
		ProductsSubtitle:  site.ProductsSubtitle,
		ContactTitle:      site.ContactTitle,
		ContactSubtitle:   site.ContactSubtitle,
		WhyChooseTitle:    site.WhyChooseTitle,
		Phone:             contact.Phone,
		Email:             contact.Email,
		AddressLine1:      addr.Line1,
		AddressLine2:      addr.Line2,
		HoursWeekday:      hours.Weekday,
		HoursSaturday:     hours.Saturday,
		EmailResponseTime: contact.EmailResponseTime,
		ShowroomNote:      contact.ShowroomNote,
		FooterCopyright:   footer.Copyright,
		FooterTagline:     footer.Tagline,
		Benefits:          cloneStrings(c.Benefits),
	}
}

// ApplySettings writes every form field into the configuration, creating any
// missing group. Fields the form does not expose (such as phoneFormatted) are
// kept.
func (c *SiteConfig) ApplySettings(s Settings) {
	if c.Site == nil {
		c.Site = &SiteText{}
	}
	if c.Contact == nil {
		c.Contact = &Contact{}
	}
	if c.Contact.Address == nil {
		c.Contact.Address = &Address{}
	}
	if c.Contact.Hours == nil {
		c.Contact.Hours = &Hours{}
	}
	if c.Footer == nil {
		c.Footer = &Footer{}
	}

	c.Site.BusinessName = s.BusinessName
	c.Site.Tagline = s.Tagline
	c.Site.Title = s.Title
	c.Site.HeroTitle = s.HeroTitle
	c.Site.HeroSubtitle = s.HeroSubtitle
	c.Site.HeroButtonText = s.HeroButtonText
	c.Site.ProductsTitle = s.ProductsTitle
	c.Site.ProductsSubtitle = s.ProductsSubtitle
	c.Site.ContactTitle = s.ContactTitle
	c.Site.ContactSubtitle = s.ContactSubtitle
	c.Site.WhyChooseTitle = s.WhyChooseTitle

	c.Contact.Phone = s.Phone
	c.Contact.Email = s.Email
	c.Contact.Address.Line1 = s.AddressLine1
	c.Contact.Address.Line2 = s.AddressLine2
	c.Contact.Hours.Weekday = s.HoursWeekday
	c.Contact.Hours.Saturday = s.HoursSaturday
	c.Contact.EmailResponseTime = s.EmailResponseTime
	c.Contact.ShowroomNote = s.ShowroomNote

	c.Footer.Copyright = s.FooterCopyright
	c.Footer.Tagline = s.FooterTagline

	c.Benefits = CleanEntries(s.Benefits)
}
