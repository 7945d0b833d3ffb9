package render

import "strings"

// Layout is the closed set of page layouts a template exists for.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutMain
	LayoutBlog
	LayoutPost
	LayoutTags
)

var layoutNames = map[Layout]string{
	LayoutMain: "main",
	LayoutBlog: "blog",
	LayoutPost: "post",
	LayoutTags: "tags",
}

// Layouts lists every known layout.
func Layouts() []Layout {
	return []Layout{LayoutMain, LayoutBlog, LayoutPost, LayoutTags}
}

// ParseLayout maps a metadata layout value to a Layout. Anything else,
// including the empty string, is LayoutUnknown.
func ParseLayout(name string) Layout {
	name = strings.TrimSpace(name)
	for l, n := range layoutNames {
		if n == name {
			return l
		}
	}
	return LayoutUnknown
}

func (l Layout) String() string {
	if n, ok := layoutNames[l]; ok {
		return n
	}
	return "unknown"
}

// TemplateName is the file the layout renders with.
func (l Layout) TemplateName() string {
	if n, ok := layoutNames[l]; ok {
		return n + ".html"
	}
	return ""
}
