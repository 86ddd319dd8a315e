// Package seo builds page metadata and schema.org payloads for the public site.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
)

// OpenGraph holds og:* tags.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

// Meta is the head metadata of a page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
}

// NewMeta fills OpenGraph from the page title and description.
func NewMeta(title, description, canonical, siteName, image string) Meta {
	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "website",
			URL:         canonical,
			SiteName:    siteName,
		},
	}
}

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals v for embedding in a <script type="application/ld+json">
// element.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// Business carries the LocalBusiness fields taken from the site config.
type Business struct {
	Name         string
	Description  string
	URL          string
	Telephone    string
	Email        string
	AddressLines []string
	OpeningHours []string
	Image        string
}

// LocalBusiness returns a schema.org LocalBusiness payload. Empty fields are
// omitted.
func LocalBusiness(b Business) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     b.Name,
	}
	if b.Description != "" {
		m["description"] = b.Description
	}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Telephone != "" {
		m["telephone"] = b.Telephone
	}
	if b.Email != "" {
		m["email"] = b.Email
	}
	if b.Image != "" {
		m["image"] = b.Image
	}
	if address := joinNonEmpty(b.AddressLines, ", "); address != "" {
		m["address"] = map[string]any{
			"@type":         "PostalAddress",
			"streetAddress": address,
		}
	}
	if hours := nonEmpty(b.OpeningHours); len(hours) > 0 {
		m["openingHours"] = hours
	}
	return m
}

// Product returns a minimal product schema payload.
func Product(name, description, url, imageURL string) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        name,
		"description": description,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	return m
}

// Graph wraps several schema payloads in one @graph document.
func Graph(items ...map[string]any) map[string]any {
	nodes := make([]map[string]any, 0, len(items))
	for _, item := range items {
		node := make(map[string]any, len(item))
		for k, v := range item {
			if k == "@context" {
				continue
			}
			node[k] = v
		}
		nodes = append(nodes, node)
	}
	return map[string]any{
		"@context": "https://schema.org",
		"@graph":   nodes,
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(values []string, sep string) string {
	return strings.Join(nonEmpty(values), sep)
}
