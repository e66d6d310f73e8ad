package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Post and comment bodies share one renderer and one sanitizer; both are safe
// for concurrent use.
var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// RenderMarkdown converts user-supplied markdown into sanitized HTML.
func RenderMarkdown(source string) string {
	if source == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdown.Convert([]byte(source), &out); err != nil {
		// 渲染失败时退回为清洗后的原文
		return sanitizer.Sanitize(source)
	}
	return EnhanceImages(string(sanitizer.SanitizeBytes(out.Bytes())))
}
