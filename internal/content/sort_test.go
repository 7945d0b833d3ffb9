package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func page(slug, date string) *Page {
	md := map[string]any{KeyURL: "/posts/" + slug}
	if date != "" {
		md[KeyDate] = date
	}
	return &Page{Slug: slug, InPosts: true, Metadata: md}
}

func slugs(pages []*Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Slug)
	}
	return out
}

func TestSortByDateDesc_UndatedLastAndStable(t *testing.T) {
	pages := []*Page{
		page("undated-a", ""),
		page("old", "2023-01-01"),
		page("new", "2024-06-01"),
		page("undated-b", ""),
		page("mid", "2024-01-01"),
		page("mid-twin", "2024-01-01"),
	}

	SortByDateDesc(pages)
	assert.Equal(t, []string{"new", "mid", "mid-twin", "old", "undated-a", "undated-b"}, slugs(pages))
}

func TestMetadataOf(t *testing.T) {
	a := page("a", "2024-01-01")
	md := MetadataOf([]*Page{a})
	assert.Equal(t, []map[string]any{a.Metadata}, md)
	assert.Empty(t, MetadataOf(nil))
}
