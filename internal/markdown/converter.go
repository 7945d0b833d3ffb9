// Package markdown converts Markdown bodies to HTML and provides byte-range
// editing helpers for rewriting raw Markdown before conversion.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style name recorded on the highlighter.
// Colours come from site CSS because classes are emitted instead of inline styles.
const DefaultHighlightStyle = "monokai"

// Converter renders Markdown to HTML with a fixed extension set: fenced code
// with chroma class-based highlighting, footnotes, tables, attribute lists,
// raw HTML passthrough and heading anchors.
//
// A Converter is safe to reuse; every call parses with a fresh context.
type Converter struct {
	md goldmark.Markdown
}

// ConverterOption customizes a Converter.
type ConverterOption func(*converterConfig)

type converterConfig struct {
	style      string
	permalinks bool
}

// WithHighlightStyle overrides the chroma style.
func WithHighlightStyle(style string) ConverterOption {
	return func(c *converterConfig) {
		if style != "" {
			c.style = style
		}
	}
}

// WithoutPermalinks disables the heading anchor links.
func WithoutPermalinks() ConverterOption {
	return func(c *converterConfig) { c.permalinks = false }
}

// NewConverter builds a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	cfg := converterConfig{style: DefaultHighlightStyle, permalinks: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	parserOpts := []parser.Option{
		parser.WithAutoHeadingID(),
		parser.WithAttribute(),
	}
	if cfg.permalinks {
		parserOpts = append(parserOpts, parser.WithASTTransformers(
			util.Prioritized(headerLinkTransformer{}, 900),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(cfg.style),
				highlighting.WithGuessLanguage(false),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Converter{md: md}
}

// Convert renders body to HTML.
func (c *Converter) Convert(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf, parser.WithContext(parser.NewContext())); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
