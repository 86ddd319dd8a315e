package site

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	markdown   = goldmark.New()
	htmlPolicy = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// RenderDescription converts a product description written in Markdown to
// sanitised HTML. Plain text renders as a single paragraph.
func RenderDescription(source string) template.HTML {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(trimmed), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(trimmed))
	}
	return template.HTML(strings.TrimSpace(htmlPolicy.Sanitize(buf.String())))
}
