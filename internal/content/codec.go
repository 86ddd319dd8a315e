package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument wraps JSON decode failures for either document.
var ErrMalformedDocument = errors.New("content: malformed document")

// Encode renders v as two-space indented JSON with a trailing newline. HTML
// characters are left unescaped so prices such as "€0" or "&" survive as typed.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("content: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCatalog parses a products.json payload. A document without a
// products array yields an empty catalog.
func DecodeCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Catalog{Products: []Product{}}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if catalog.Products == nil {
		catalog.Products = []Product{}
	}
	return catalog, nil
}

// DecodeConfig parses a config.json payload.
func DecodeConfig(data []byte) (SiteConfig, error) {
	var cfg SiteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return cfg, nil
}
