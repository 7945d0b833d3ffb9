package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// TagsDir is the output subdirectory holding one page per tag.
const TagsDir = "tags"

// TagIndex groups posts by normalized tag name.
type TagIndex struct {
	posts map[string][]*content.Page
}

// NewTagIndex creates an empty index.
func NewTagIndex() *TagIndex {
	return &TagIndex{posts: make(map[string][]*content.Page)}
}

// NormalizeTag trims a tag and converts it to Unicode NFC so visually
// identical names group together.
func NormalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}

// Add files page under each of its tags. Blank tags and repeats of the same
// tag on one page are ignored.
func (ti *TagIndex) Add(page *content.Page) {
	seen := make(map[string]bool)
	for _, raw := range page.Tags() {
		tag := NormalizeTag(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		ti.posts[tag] = append(ti.posts[tag], page)
	}
}

// Names returns the tag names in sorted order.
func (ti *TagIndex) Names() []string {
	names := make([]string, 0, len(ti.posts))
	for name := range ti.posts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Posts returns the posts filed under tag, newest first.
func (ti *TagIndex) Posts(tag string) []*content.Page {
	list := append([]*content.Page(nil), ti.posts[tag]...)
	content.SortByDateDesc(list)
	return list
}

// Len returns the number of tags.
func (ti *TagIndex) Len() int { return len(ti.posts) }

// SafeTagName reports whether tag can be used as a file name inside the
// tags directory.
func SafeTagName(tag string) bool {
	switch {
	case tag == "", tag == ".", tag == "..":
		return false
	case strings.ContainsAny(tag, "/\\\x00"):
		return false
	}
	return true
}

// TagPagePath returns the output file for a tag.
func (r *Renderer) TagPagePath(tag string) string {
	return filepath.Join(r.outputDir, TagsDir, tag+".html")
}

// RenderTagPages writes tags/{tag}.html for every tag in the index and
// returns the written paths. Unsafe tag names are skipped with a warning.
func (r *Renderer) RenderTagPages(index *TagIndex) ([]string, error) {
	tpl, ok := r.templates.Layout(LayoutTags)
	if !ok {
		return nil, fmt.Errorf("tags template not loaded")
	}

	var written []string
	for _, tag := range index.Names() {
		if !SafeTagName(tag) {
			r.logger.Warn("Skipping tag with unsafe name", logfields.Tag(tag))
			continue
		}

		html, err := execute(tpl, LayoutTags.TemplateName(), pongo2.Context{
			"site":     r.site,
			"tag_name": tag,
			"posts":    content.MetadataOf(index.Posts(tag)),
			"page":     map[string]any{"title": "Tag: " + tag},
		})
		if err != nil {
			return written, err
		}

		dest := r.TagPagePath(tag)
		if err := writeFile(dest, html); err != nil {
			return written, err
		}
		r.logger.Info("Generated tag page", logfields.Tag(tag), logfields.Output(dest))
		written = append(written, dest)
	}
	return written, nil
}
