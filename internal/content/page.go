// Package content parses Markdown source files into Pages: frontmatter
// metadata, a derived URL and rendered body HTML.
package content

import (
	"fmt"
	"path"
	"strings"
)

// Recognized metadata keys.
const (
	KeyLayout = "layout"
	KeyDate   = "date"
	KeyDraft  = "draft"
	KeyTags   = "tags"
	KeyTitle  = "title"
	KeyURL    = "url"
)

// PostsPrefix prefixes the ledger identifier of pages under the posts directory.
const PostsPrefix = "posts/"

// Page is one parsed source document.
type Page struct {
	// SourcePath is the file the page was parsed from.
	SourcePath string
	// Slug is the filename without extension.
	Slug string
	// URL is "/", "/{slug}" or "/posts/{slug}".
	URL string
	// InPosts reports whether the source lives under the posts directory.
	InPosts bool
	// Metadata is never nil. It always carries the derived url.
	Metadata map[string]any
	// BodyHTML is the converted Markdown body.
	BodyHTML string
}

// ID is the page identifier recorded in the slug ledger.
func (p *Page) ID() string {
	if p.InPosts {
		return PostsPrefix + p.Slug
	}
	return p.Slug
}

// Layout returns the layout name, or "" when missing.
func (p *Page) Layout() string {
	return stringValue(p.Metadata[KeyLayout])
}

// Title returns the title, or "" when missing.
func (p *Page) Title() string {
	return stringValue(p.Metadata[KeyTitle])
}

// Date returns the normalized YYYY-MM-DD date if present.
func (p *Page) Date() (string, bool) {
	d, ok := p.Metadata[KeyDate].(string)
	return d, ok && d != ""
}

// Tags returns the page tags in source order. A single scalar tag is
// accepted as a one-element list.
func (p *Page) Tags() []string {
	switch v := p.Metadata[KeyTags].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{fmt.Sprint(v)}
	}
}

// IsDraft reports whether the page is marked as a draft.
func (p *Page) IsDraft() bool {
	return IsDraftValue(p.Metadata[KeyDraft])
}

// IsDraftValue applies the draft rule to a raw metadata value: its string
// form, lowercased, must be one of true, 1 or yes.
func IsDraftValue(v any) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(fmt.Sprint(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// DeriveURL computes the slug and URL for a source path.
func DeriveURL(sourcePath string, inPosts bool) (slug, url string) {
	base := path.Base(strings.ReplaceAll(sourcePath, "\\", "/"))
	slug = strings.TrimSuffix(base, path.Ext(base))
	switch {
	case inPosts:
		return slug, "/posts/" + slug
	case slug == "index":
		return slug, "/"
	default:
		return slug, "/" + slug
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
