package site

import (
	"net/url"
	"strconv"
)

// Slider is the image carousel of one product card. Exactly one image is
// active when the product has any.
type Slider struct {
	ProductID string
	Name      string
	Images    []string
	Active    int
}

// NewSlider returns a slider showing the first image.
func NewSlider(productID, name string, images []string) Slider {
	return Slider{ProductID: productID, Name: name, Images: append([]string(nil), images...)}
}

// HasArrows reports whether the slider can move at all.
func (s Slider) HasArrows() bool {
	return len(s.Images) > 1
}

// Change returns the slider moved by direction with wraparound.
func (s Slider) Change(direction int) Slider {
	out := s
	out.Active = NextIndex(s.Active, direction, len(s.Images))
	return out
}

// IsActive reports whether the image at i carries the active marker.
func (s Slider) IsActive(i int) bool {
	return i == s.Active
}

// ActiveIndex returns the index of the last set marker, or 0 when none is set.
func ActiveIndex(markers []bool) int {
	active := 0
	for i, on := range markers {
		if on {
			active = i
		}
	}
	return active
}

// NextIndex returns (active + direction) mod count, wrapping in both
// directions. An empty slider stays at 0.
func NextIndex(active, direction, count int) int {
	if count <= 0 {
		return 0
	}
	next := (active + direction) % count
	if next < 0 {
		next += count
	}
	return next
}

// PrevURL is the fragment request moving one image back.
func (s Slider) PrevURL() string {
	return s.fragmentURL(-1)
}

// NextURL is the fragment request moving one image forward.
func (s Slider) NextURL() string {
	return s.fragmentURL(1)
}

func (s Slider) fragmentURL(direction int) string {
	q := url.Values{}
	q.Set("active", strconv.Itoa(s.Active))
	q.Set("direction", strconv.Itoa(direction))
	return "/fragments/slider/" + url.PathEscape(s.ProductID) + "?" + q.Encode()
}
