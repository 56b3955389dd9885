package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Order notes are short and line oriented: single newlines render as breaks
// and raw HTML typed by waiters is never passed through.
var (
	notesMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	notesPolicy = newNotesPolicy()
)

func newNotesPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderNotes converts order notes written in markdown to sanitized HTML.
// Blank notes render as the empty string.
func RenderNotes(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(src), &buf); err != nil {
		return notesPolicy.Sanitize(src)
	}
	return notesPolicy.Sanitize(buf.String())
}
