// Package render writes pages, tag listings and the sitemap through the
// site's Jinja-compatible templates.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// Output describes the result of rendering one page.
type Output struct {
	Path    string
	Skipped bool
	Reason  string
}

// Renderer renders into an output directory.
type Renderer struct {
	templates *TemplateSet
	site      map[string]any
	outputDir string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer. site is passed to every template as "site".
func NewRenderer(templates *TemplateSet, site map[string]any, outputDir string) *Renderer {
	if site == nil {
		site = map[string]any{}
	}
	return &Renderer{
		templates: templates,
		site:      site,
		outputDir: outputDir,
		logger:    slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (r *Renderer) WithLogger(logger *slog.Logger) *Renderer {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// RenderPage renders page with its layout template. posts is exposed to the
// blog layout only, and only when non-nil. Pages with an unknown layout are
// skipped with a warning.
func (r *Renderer) RenderPage(page *content.Page, posts []*content.Page) (Output, error) {
	layout := ParseLayout(page.Layout())
	tpl, ok := r.templates.Layout(layout)
	if !ok {
		warn := perrors.UnknownLayout(page.SourcePath, page.Layout())
		r.logger.Warn("Template not found, skipping page",
			logfields.SourcePath(page.SourcePath),
			logfields.Layout(page.Layout()),
			logfields.Error(warn))
		return Output{Skipped: true, Reason: "unknown_layout"}, nil
	}

	ctx := pongo2.Context{
		"site":    r.site,
		"page":    page.Metadata,
		"content": pongo2.AsSafeValue(page.BodyHTML),
	}
	if layout == LayoutBlog && posts != nil {
		ctx["posts"] = content.MetadataOf(posts)
	}

	html, err := execute(tpl, layout.TemplateName(), ctx)
	if err != nil {
		return Output{}, err
	}

	dest, err := r.PagePath(page.URL)
	if err != nil {
		return Output{}, err
	}
	if err := writeFile(dest, html); err != nil {
		return Output{}, err
	}

	r.logger.Info("Generated page", logfields.URL(page.URL), logfields.Output(dest))
	return Output{Path: dest}, nil
}

// PagePath maps a page URL to its index.html under the output directory.
func (r *Renderer) PagePath(url string) (string, error) {
	rel := strings.Trim(url, "/")
	if rel == "" {
		return filepath.Join(r.outputDir, "index.html"), nil
	}
	dir, err := r.within(filepath.FromSlash(rel))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index.html"), nil
}

// within joins rel onto the output directory and rejects results that
// would leave it.
func (r *Renderer) within(rel string) (string, error) {
	root := filepath.Clean(r.outputDir)
	joined := filepath.Join(root, rel)
	back, err := filepath.Rel(root, joined)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", perrors.New(perrors.CategoryValidation, perrors.SeverityError, "output path escapes output directory").
			WithContext("path", rel)
	}
	return joined, nil
}

func writeFile(dest, data string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return perrors.OutputWriteFailed(dest, fmt.Errorf("create parent: %w", err))
	}
	// #nosec G306 - generated site output is world readable
	if err := os.WriteFile(dest, []byte(data), 0o644); err != nil {
		return perrors.OutputWriteFailed(dest, err)
	}
	return nil
}
