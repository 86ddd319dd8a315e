package seo

import (
	"strings"
	"testing"
)

func TestLocalBusinessOmitsEmptyFields(t *testing.T) {
	got := LocalBusiness(Business{
		Name:         "Kilkenny Quads",
		Telephone:    "+353871234567",
		AddressLines: []string{"Unit 31", " ", "Kilkenny"},
		OpeningHours: []string{"Mon-Fri 9-6", ""},
	})
	if got["@type"] != "LocalBusiness" {
		t.Fatalf("unexpected type %v", got["@type"])
	}
	if _, ok := got["email"]; ok {
		t.Fatalf("expected email to be omitted")
	}
	address := got["address"].(map[string]any)
	if address["streetAddress"] != "Unit 31, Kilkenny" {
		t.Fatalf("unexpected address %v", address["streetAddress"])
	}
	if hours := got["openingHours"].([]string); len(hours) != 1 {
		t.Fatalf("unexpected hours %v", hours)
	}
}

func TestGraphStripsNestedContext(t *testing.T) {
	out := JSON(Graph(LocalBusiness(Business{Name: "A"}), Product("Quad", "Fast", "", "")))
	if strings.Count(out, "@context") != 1 {
		t.Fatalf("expected a single @context, got %s", out)
	}
	if !strings.Contains(out, `"@type":"Product"`) {
		t.Fatalf("expected product node in %s", out)
	}
}

func TestNewMetaCopiesIntoOpenGraph(t *testing.T) {
	m := NewMeta("Title", "Desc", "https://example.com/", "Site", "")
	if m.OG.Title != "Title" || m.OG.URL != "https://example.com/" || m.OG.Type != "website" {
		t.Fatalf("unexpected og %+v", m.OG)
	}
}
