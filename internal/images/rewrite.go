package images

import (
	"log/slog"
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// imageRef matches ![alt](target) and ![alt](target "title").
var imageRef = regexp.MustCompile(`!\[([^\]\n]*)\]\(\s*([^)\s]+)(?:\s+"([^"\n]*)")?\s*\)`)

// Rewriter replaces Markdown image references under the images directory with
// <picture> markup for files present in the manifest.
type Rewriter struct {
	manifest Manifest
	prefix   string
	sizes    string
	logger   *slog.Logger
}

// RewriterOption customizes a Rewriter.
type RewriterOption func(*Rewriter)

// WithSizes overrides the sizes attribute.
func WithSizes(sizes string) RewriterOption {
	return func(r *Rewriter) { r.sizes = sizes }
}

// WithLogger sets the logger used for per-image debug output.
func WithLogger(logger *slog.Logger) RewriterOption {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRewriter creates a Rewriter for references whose target starts with
// imagesDir (with or without a leading slash).
func NewRewriter(manifest Manifest, imagesDir string, opts ...RewriterOption) *Rewriter {
	prefix := strings.Trim(path.Clean("/"+strings.ReplaceAll(imagesDir, "\\", "/")), "/")
	r := &Rewriter{
		manifest: manifest,
		prefix:   prefix + "/",
		sizes:    DefaultSizes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite returns body with every resolvable image reference replaced and
// the number of references rewritten. References inside code blocks or spans
// and filenames missing from the manifest are left untouched.
func (r *Rewriter) Rewrite(body []byte) ([]byte, int) {
	if len(r.manifest) == 0 {
		return body, 0
	}

	matches := imageRef.FindAllSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body, 0
	}
	code := markdown.CodeRanges(body)

	var edits []markdown.Edit
	for _, m := range matches {
		if markdown.InRanges(code, m[0]) {
			continue
		}
		target := string(body[m[4]:m[5]])
		if !r.matchesPrefix(target) {
			continue
		}

		filename := path.Base(target)
		formats, ok := r.manifest.Lookup(filename)
		if !ok {
			r.logger.Debug("Image not in manifest", logfields.SourcePath(target))
			continue
		}

		title := ""
		if m[6] >= 0 {
			title = string(body[m[6]:m[7]])
		}
		pic, ok := NewPicture(string(body[m[2]:m[3]]), title, r.sizes, formats)
		if !ok {
			continue
		}
		markup, err := pic.HTML()
		if err != nil {
			r.logger.Warn("Failed to render picture", logfields.SourcePath(target), logfields.Error(err))
			continue
		}
		edits = append(edits, markdown.Edit{Start: m[0], End: m[1], Replacement: []byte(markup)})
	}

	out, err := markdown.ApplyEdits(body, edits)
	if err != nil {
		r.logger.Warn("Failed to apply image rewrites", logfields.Error(err))
		return body, 0
	}
	return out, len(edits)
}

func (r *Rewriter) matchesPrefix(target string) bool {
	if strings.Contains(target, "://") {
		return false
	}
	return strings.HasPrefix(strings.TrimPrefix(target, "/"), r.prefix)
}
