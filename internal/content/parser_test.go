package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/images"
)

type fixture struct {
	root     string
	content  string
	postsDir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:     root,
		content:  filepath.Join(root, "content"),
		postsDir: filepath.Join(root, "content", "posts"),
	}
	require.NoError(t, os.MkdirAll(f.postsDir, 0o755))
	return f
}

func (f fixture) write(t *testing.T, rel, body string) string {
	t.Helper()
	p := filepath.Join(f.content, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestParse_FrontmatterAndBody(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "about.md", "---\ntitle: About\nlayout: main\ntags: [a, b]\n---\n# Hello\n")

	page, err := NewParser(f.postsDir).Parse(p)
	require.NoError(t, err)

	assert.Equal(t, "about", page.Slug)
	assert.Equal(t, "/about", page.URL)
	assert.Equal(t, "about", page.ID())
	assert.Equal(t, "About", page.Title())
	assert.Equal(t, "main", page.Layout())
	assert.Equal(t, []string{"a", "b"}, page.Tags())
	assert.Equal(t, "/about", page.Metadata[KeyURL])
	assert.Contains(t, page.BodyHTML, `<h1 id="hello">Hello`)
}

func TestParse_NoFrontmatter(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "plain.md", "Just text.\n")

	page, err := NewParser(f.postsDir).Parse(p)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{KeyURL: "/plain"}, page.Metadata)
	assert.Contains(t, page.BodyHTML, "<p>Just text.</p>")
}

func TestParse_IndexAndPostsURLs(t *testing.T) {
	f := newFixture(t)
	parser := NewParser(f.postsDir)

	index, err := parser.Parse(f.write(t, "index.md", "home"))
	require.NoError(t, err)
	assert.Equal(t, "/", index.URL)
	assert.Equal(t, "index", index.ID())

	post, err := parser.Parse(f.write(t, "posts/hello.md", "---\nlayout: post\n---\nhi"))
	require.NoError(t, err)
	assert.Equal(t, "/posts/hello", post.URL)
	assert.True(t, post.InPosts)
	assert.Equal(t, "posts/hello", post.ID())
}

func TestParse_URLOverridesFrontmatter(t *testing.T) {
	f := newFixture(t)
	page, err := NewParser(f.postsDir).Parse(f.write(t, "x.md", "---\nurl: /elsewhere\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "/x", page.URL)
	assert.Equal(t, "/x", page.Metadata[KeyURL])
}

func TestParse_MalformedYAMLFallsBack(t *testing.T) {
	f := newFixture(t)
	raw := "---\ntitle: [unclosed\n---\nBody text\n"
	page, err := NewParser(f.postsDir).Parse(f.write(t, "bad.md", raw))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{KeyURL: "/bad"}, page.Metadata)
	assert.Contains(t, page.BodyHTML, "Body text")
	assert.Contains(t, page.BodyHTML, "title: [unclosed")
}

func TestParse_MissingClosingDelimiterFallsBack(t *testing.T) {
	f := newFixture(t)
	page, err := NewParser(f.postsDir).Parse(f.write(t, "open.md", "---\ntitle: x\nno close here\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{KeyURL: "/open"}, page.Metadata)
	assert.Contains(t, page.BodyHTML, "no close here")
}

func TestParse_ListFrontmatterIsMalformed(t *testing.T) {
	f := newFixture(t)
	page, err := NewParser(f.postsDir).Parse(f.write(t, "list.md", "---\n- a\n- b\n---\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{KeyURL: "/list"}, page.Metadata)
}

func TestParse_EmptyFrontmatterIsEmptyMap(t *testing.T) {
	f := newFixture(t)
	page, err := NewParser(f.postsDir).Parse(f.write(t, "empty.md", "---\n---\nbody\n"))
	require.NoError(t, err)
	require.NotNil(t, page.Metadata)
	assert.Equal(t, map[string]any{KeyURL: "/empty"}, page.Metadata)
	assert.Contains(t, page.BodyHTML, "<p>body</p>")
}

func TestParse_DateNormalization(t *testing.T) {
	f := newFixture(t)
	parser := NewParser(f.postsDir)

	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{name: "plain date", value: "2024-01-05", want: "2024-01-05", ok: true},
		{name: "timestamp", value: "2024-01-05T10:30:00Z", want: "2024-01-05", ok: true},
		{name: "quoted datetime", value: `"2024-03-01 08:00:00"`, want: "2024-03-01", ok: true},
		{name: "garbage", value: "not-a-date", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := parser.Parse(f.write(t, "d.md", "---\ndate: "+tt.value+"\n---\n"))
			require.NoError(t, err)
			got, ok := page.Date()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if !tt.ok {
				assert.NotContains(t, page.Metadata, KeyDate)
			}
		})
	}
}

func TestParse_RewritesImagesBeforeConversion(t *testing.T) {
	f := newFixture(t)
	manifest := images.Manifest{"cat.jpg": {
		images.FormatWebP: {
			{Format: images.FormatWebP, Path: "assets/images/cat-400.webp", Width: 400},
			{Format: images.FormatWebP, Path: "assets/images/cat-800.webp", Width: 800},
		},
	}}
	parser := NewParser(f.postsDir, WithImageRewriter(images.NewRewriter(manifest, "assets/images")))

	page, err := parser.Parse(f.write(t, "img.md", "![Cat](/assets/images/cat.jpg)\n"))
	require.NoError(t, err)
	assert.Contains(t, page.BodyHTML, "<picture>")
	assert.Contains(t, page.BodyHTML, `src="/assets/images/cat-800.webp"`)
}

func TestParse_MissingFileIsFilesystemError(t *testing.T) {
	f := newFixture(t)
	_, err := NewParser(f.postsDir).Parse(filepath.Join(f.content, "missing.md"))
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryFileSystem))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizeDate_NativeTime(t *testing.T) {
	got, ok := NormalizeDate(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "2023-12-31", got)

	_, ok = NormalizeDate(nil)
	assert.False(t, ok)
	_, ok = NormalizeDate(2024)
	assert.False(t, ok)
}

func TestIsDraftValue(t *testing.T) {
	for _, v := range []any{true, "true", "True", "yes", "YES", 1, "1"} {
		assert.True(t, IsDraftValue(v), "%v", v)
	}
	for _, v := range []any{nil, false, "no", 0, "", "draft"} {
		assert.False(t, IsDraftValue(v), "%v", v)
	}
}

func TestDeriveURL(t *testing.T) {
	slug, url := DeriveURL("content/index.md", false)
	assert.Equal(t, "index", slug)
	assert.Equal(t, "/", url)

	slug, url = DeriveURL("content/posts/index.md", true)
	assert.Equal(t, "index", slug)
	assert.Equal(t, "/posts/index", url)

	_, url = DeriveURL("content/about.markdown.md", false)
	assert.Equal(t, "/about.markdown", url)
}

func TestPageTags_ScalarAndMissing(t *testing.T) {
	p := &Page{Metadata: map[string]any{KeyTags: "go"}}
	assert.Equal(t, []string{"go"}, p.Tags())
	assert.Nil(t, (&Page{Metadata: map[string]any{}}).Tags())
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("content/posts", "content/posts/a.md"))
	assert.False(t, IsWithin("content/posts", "content/a.md"))
	assert.False(t, IsWithin("content/posts", "content/posts-old/a.md"))
	assert.False(t, IsWithin("", "content/a.md"))
}
