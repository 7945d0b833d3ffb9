package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// HeaderLinkClass is the class attribute on heading permalink anchors.
const HeaderLinkClass = "headerlink"

const headerLinkText = "¶"

// headerLinkTransformer appends <a class="headerlink" href="#id">¶</a> to
// every heading that carries an id.
type headerLinkTransformer struct{}

func (headerLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, h := range headings {
		raw, ok := h.AttributeString("id")
		if !ok {
			continue
		}
		id, ok := raw.([]byte)
		if !ok || len(id) == 0 {
			continue
		}

		link := ast.NewLink()
		link.Destination = append([]byte("#"), id...)
		link.SetAttributeString("class", []byte(HeaderLinkClass))
		link.AppendChild(link, ast.NewString([]byte(headerLinkText)))
		h.AppendChild(h, link)
	}
}
