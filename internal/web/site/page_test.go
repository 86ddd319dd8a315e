package site

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
)

func loadFixture(t *testing.T) Data {
	t.Helper()

	fsys := fstest.MapFS{
		"products.json": {Data: []byte(catalogJSON)},
		"config.json":   {Data: []byte(configJSON)},
	}
	return NewLoader(NewDirSource(fsys), Documents{}).Load(context.Background()).Data
}

func renderPage(t *testing.T, page Page) *goquery.Document {
	t.Helper()

	r, err := NewRenderer(DefaultTemplates(), false)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, page))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestBuildPageShowsVisibleProductsOnly(t *testing.T) {
	t.Parallel()

	page := BuildPage(loadFixture(t), PageOptions{CanonicalURL: "https://example.com/"})
	require.Len(t, page.Cards, 1)
	require.Equal(t, "a", page.Cards[0].ID)
	require.Equal(t, "€4,999", page.Cards[0].PriceLabel)
	require.Equal(t, "tel:+353871234567", string(page.Contact.PhoneHref))
	require.Equal(t, "mailto:info@example.com", string(page.Contact.EmailHref))
	require.Equal(t, "https://example.com/", page.Meta.Canonical)
	require.Equal(t, "a1.jpg", page.Meta.OG.Image)
}

func TestBuildCardPriceOnRequest(t *testing.T) {
	t.Parallel()

	card := BuildCard(content.Product{ID: "x", Name: "X"})
	require.Equal(t, content.PriceOnRequest, card.PriceLabel)
	require.Empty(t, card.Slider.Images)
}

func TestBuildPageOnEmptyDocuments(t *testing.T) {
	t.Parallel()

	page := BuildPage(Data{Catalog: content.Catalog{Products: []content.Product{}}}, PageOptions{})
	require.Empty(t, page.Cards)
	require.Empty(t, page.Contact.PhoneHref)
	require.Empty(t, page.Contact.EmailHref)

	doc := renderPage(t, page)
	require.Equal(t, 0, doc.Find(".product-card").Length())
	require.Equal(t, 0, doc.Find("#contact a[href^='tel:']").Length())
	require.Empty(t, strings.TrimSpace(doc.Find(".site-footer p").First().Text()))
}

func TestRenderedPage(t *testing.T) {
	t.Parallel()

	doc := renderPage(t, BuildPage(loadFixture(t), PageOptions{}))

	require.Equal(t, "Kilkenny Quads", doc.Find("title").Text())
	require.Equal(t, "Kilkenny Quads", doc.Find(".logo h1").Text())
	require.Equal(t, "Quads for all", doc.Find(".logo .tagline").Text())

	card := doc.Find(".product-grid .product-card")
	require.Equal(t, 1, card.Length())
	require.Equal(t, "Quad A", card.Find("h3").Text())
	require.Equal(t, "<p>Fast</p>", strings.TrimSpace(mustHTML(t, card.Find(".product-desc"))))
	require.Equal(t, 2, card.Find(".slider-images img").Length())
	require.Equal(t, 1, card.Find(".slider-images img.active").Length())
	require.Equal(t, "a1.jpg", card.Find(".slider-images img.active").AttrOr("src", ""))
	require.Equal(t, 2, card.Find(".slider-arrow").Length())
	require.Equal(t, "4WD", card.Find(".product-features li").Text())

	require.Equal(t, "tel:+353871234567", doc.Find("#contact a[href^='tel:']").AttrOr("href", ""))
	require.Equal(t, "087 123 4567", doc.Find("#contact a[href^='tel:']").Text())
	require.Equal(t, "✓ Warranty", strings.TrimSpace(doc.Find(".benefits-list li").Text()))
	require.Equal(t, "© 2024 Kilkenny Quads", strings.TrimSpace(doc.Find(".site-footer p").First().Text()))
	require.Equal(t, "Ride on", doc.Find(".footer-tagline").Text())

	var ld map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc.Find(`script[type="application/ld+json"]`).Text()), &ld))
	require.Len(t, ld["@graph"], 2)
}

func TestRenderSliderFragment(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer(DefaultTemplates(), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	s := NewSlider("a", "Quad A", []string{"a1.jpg", "a2.jpg"}).Change(-1)
	require.NoError(t, r.Slider(&buf, s))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	require.Equal(t, "a2.jpg", doc.Find("img.active").AttrOr("src", ""))

	buf.Reset()
	require.NoError(t, r.Slider(&buf, NewSlider("e", "Empty", nil)))
	require.NotContains(t, buf.String(), "slider-arrow")
}

func TestRenderDescriptionSanitises(t *testing.T) {
	t.Parallel()

	require.Empty(t, RenderDescription("   "))
	out := string(RenderDescription("**Bold** <script>alert(1)</script>"))
	require.Contains(t, out, "<strong>Bold</strong>")
	require.NotContains(t, out, "<script>")
}

func mustHTML(t *testing.T, s *goquery.Selection) string {
	t.Helper()

	html, err := s.Html()
	require.NoError(t, err)
	return html
}
