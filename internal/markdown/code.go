package markdown

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Range is a half-open byte range [Start, End) into a source.
type Range struct {
	Start int
	End   int
}

// Contains reports whether offset falls inside r.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// CodeRanges returns the byte ranges of code block and inline code span
// contents in body, sorted by start offset.
func CodeRanges(body []byte) []Range {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var ranges []Range
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			if lines.Len() > 0 {
				ranges = append(ranges, Range{
					Start: lines.At(0).Start,
					End:   lines.At(lines.Len() - 1).Stop,
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if r, ok := spanRange(n); ok {
				ranges = append(ranges, r)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

// spanRange covers the text segments of an inline code span.
func spanRange(span ast.Node) (Range, bool) {
	r := Range{Start: -1}
	for c := span.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if r.Start < 0 {
			r.Start = t.Segment.Start
		}
		r.End = t.Segment.Stop
	}
	return r, r.Start >= 0
}

// InRanges reports whether offset falls inside any of the sorted ranges.
func InRanges(ranges []Range, offset int) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].End > offset })
	return i < len(ranges) && ranges[i].Contains(offset)
}
