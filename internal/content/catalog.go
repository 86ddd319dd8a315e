// Package content models the two JSON documents that back the showroom site:
// the product catalog (products.json) and the site configuration (config.json).
package content

import (
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrProductNotFound is returned when an id no longer resolves to a product.
var ErrProductNotFound = errors.New("content: product not found")

const (
	// PriceOnRequest is shown wherever a product has no price.
	PriceOnRequest = "Price on request"

	placeholderIDPrefix = "new-product-"
	placeholderImage    = "images/placeholder.jpg"
)

// Catalog is the in-memory form of products.json. Slice order is display order.
type Catalog struct {
	Products []Product `json:"products"`
}

// Product is a single catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Colors      string   `json:"colors"`
	Features    []string `json:"features"`
	Images      []string `json:"images"`
	Visible     bool     `json:"visible"`
}

// ProductEdit carries the fields exposed by the product edit form.
type ProductEdit struct {
	Name        string
	Price       string
	Description string
	Colors      string
	Features    []string
}

// PriceLabel returns the display price, falling back to PriceOnRequest.
func (p Product) PriceLabel() string {
	if strings.TrimSpace(p.Price) == "" {
		return PriceOnRequest
	}
	return p.Price
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ApplyEdit shallow-merges the edited fields into a copy of p. ID, Images and
// Visible are carried over untouched.
func (p Product) ApplyEdit(edit ProductEdit) Product {
	out := p.Clone()
	out.Name = edit.Name
	out.Price = edit.Price
	out.Description = edit.Description
	out.Colors = edit.Colors
	out.Features = CleanEntries(edit.Features)
	return out
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	out := p
	out.Features = cloneStrings(p.Features)
	out.Images = cloneStrings(p.Images)
	return out
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	if c.Products == nil {
		return Catalog{Products: []Product{}}
	}
	out := Catalog{Products: make([]Product, len(c.Products))}
	for i, p := range c.Products {
		out.Products[i] = p.Clone()
	}
	return out
}

// Visible returns the products flagged visible, preserving catalog order.
func (c Catalog) Visible() []Product {
	out := make([]Product, 0, len(c.Products))
	for _, p := range c.Products {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// IndexOf returns the current index of the product with the given id, or -1.
func (c Catalog) IndexOf(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, p := range c.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the product with the given id.
func (c Catalog) Find(id string) (Product, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Product{}, false
	}
	return c.Products[idx], true
}

// Replace stores p at the index currently holding p.ID.
func (c *Catalog) Replace(p Product) error {
	idx := c.IndexOf(p.ID)
	if idx < 0 {
		return ErrProductNotFound
	}
	c.Products[idx] = p
	return nil
}

// Remove deletes the product with the given id and returns it.
func (c *Catalog) Remove(id string) (Product, error) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Product{}, ErrProductNotFound
	}
	removed := c.Products[idx]
	c.Products = append(c.Products[:idx], c.Products[idx+1:]...)
	return removed, nil
}

// ToggleVisible flips the visibility of the product with the given id.
func (c *Catalog) ToggleVisible(id string) (Product, error) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Product{}, ErrProductNotFound
	}
	c.Products[idx].Visible = !c.Products[idx].Visible
	return c.Products[idx], nil
}

// Append adds p at the end of the catalog.
func (c *Catalog) Append(p Product) {
	c.Products = append(c.Products, p)
}

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewPlaceholderID returns a timestamp-derived id for a product that has not
// been named yet.
func NewPlaceholderID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	return placeholderIDPrefix + strings.ToLower(id.String())
}

// NewPlaceholderProduct returns the hidden entry appended by "Add New Product".
func NewPlaceholderProduct(now time.Time) Product {
	return Product{
		ID:          NewPlaceholderID(now),
		Name:        "New Product",
		Price:       "€0",
		Description: "Enter product description",
		Colors:      "Available colors",
		Features:    []string{"Feature 1", "Feature 2", "Feature 3"},
		Images:      []string{placeholderImage},
		Visible:     false,
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
