package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts markdown to sanitised, enhanced HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}

	sanitized := policy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}

func markdownCacheKey(key string, version time.Time) string {
	return fmt.Sprintf("md:%s:%d", key, version.UnixNano())
}

// RenderMarkdownCached renders source once per (key, version) pair.
func RenderMarkdownCached(key string, version time.Time, source string) template.HTML {
	cacheKey := markdownCacheKey(key, version)
	if cached, ok := GetCache().Get(cacheKey).(template.HTML); ok {
		return cached
	}
	rendered := RenderMarkdown(source)
	GetCache().Set(cacheKey, rendered, 30*time.Minute)
	return rendered
}

// ForgetMarkdown drops the rendering cached for (key, version).
func ForgetMarkdown(key string, version time.Time) {
	GetCache().Delete(markdownCacheKey(key, version))
}
