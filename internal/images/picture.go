package images

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSizes is the sizes attribute emitted on every <source>.
const DefaultSizes = "(max-width: 800px) 100vw, 800px"

var (
	sourceOrder   = []string{FormatAVIF, FormatWebP, FormatJPG}
	fallbackOrder = []string{FormatWebP, FormatAVIF, FormatJPG}
	mimeTypes     = map[string]string{
		FormatAVIF: "image/avif",
		FormatWebP: "image/webp",
		FormatJPG:  "image/jpeg",
	}
)

// Picture describes the markup for one rewritten image reference.
type Picture struct {
	Alt     string
	Title   string
	Sizes   string
	Sources []Source
	Src     string
}

// Source is one <source> element.
type Source struct {
	Type   string
	SrcSet string
}

// NewPicture selects sources and the fallback image for a set of variants.
//
// Sources are listed avif, webp, jpg. The fallback is taken from the first
// present format of webp, avif, jpg and uses the second-narrowest variant
// when there are at least two, otherwise the only one.
func NewPicture(alt, title, sizes string, formats map[string][]Variant) (Picture, bool) {
	if sizes == "" {
		sizes = DefaultSizes
	}
	p := Picture{Alt: alt, Title: title, Sizes: sizes}

	for _, format := range sourceOrder {
		variants := formats[format]
		if len(variants) == 0 {
			continue
		}
		entries := make([]string, 0, len(variants))
		for _, v := range variants {
			entries = append(entries, fmt.Sprintf("%s %dw", publicPath(v.Path), v.Width))
		}
		p.Sources = append(p.Sources, Source{Type: mimeTypes[format], SrcSet: strings.Join(entries, ", ")})
	}

	for _, format := range fallbackOrder {
		variants := formats[format]
		if len(variants) == 0 {
			continue
		}
		pick := variants[0]
		if len(variants) >= 2 {
			pick = variants[1]
		}
		p.Src = publicPath(pick.Path)
		break
	}

	return p, p.Src != ""
}

// HTML renders the picture element.
func (p Picture) HTML() (string, error) {
	picture := element(atom.Picture)
	for _, s := range p.Sources {
		picture.AppendChild(element(atom.Source,
			html.Attribute{Key: "type", Val: s.Type},
			html.Attribute{Key: "srcset", Val: s.SrcSet},
			html.Attribute{Key: "sizes", Val: p.Sizes},
		))
	}

	attrs := []html.Attribute{
		{Key: "src", Val: p.Src},
		{Key: "alt", Val: p.Alt},
	}
	if p.Title != "" {
		attrs = append(attrs, html.Attribute{Key: "title", Val: p.Title})
	}
	attrs = append(attrs, html.Attribute{Key: "loading", Val: "lazy"})
	picture.AppendChild(element(atom.Img, attrs...))

	var b strings.Builder
	if err := html.Render(&b, picture); err != nil {
		return "", fmt.Errorf("render picture: %w", err)
	}
	return b.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// publicPath makes a manifest path site-absolute unless it already is one
// or is a full URL.
func publicPath(p string) string {
	if strings.HasPrefix(p, "/") || strings.Contains(p, "://") || strings.HasPrefix(p, "data:") {
		return p
	}
	return "/" + p
}
