package render

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
)

// SitemapTemplate is the template the sitemap renders with.
const SitemapTemplate = "sitemap.xml.j2"

// TemplateSet holds the parsed layout templates of a template directory.
// The sitemap template is parsed on first use because only full builds
// need it.
type TemplateSet struct {
	set     *pongo2.TemplateSet
	layouts map[Layout]*pongo2.Template
	sitemap *pongo2.Template
}

// LoadTemplates parses every layout template under dir. A missing directory
// or layout template is a fatal configuration error.
func LoadTemplates(dir string) (*TemplateSet, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, perrors.TemplateLoadFailed(dir, err)
	}

	ts := &TemplateSet{
		set:     pongo2.NewSet("pagesmith", loader),
		layouts: make(map[Layout]*pongo2.Template, len(layoutNames)),
	}
	for _, l := range Layouts() {
		tpl, err := ts.set.FromFile(l.TemplateName())
		if err != nil {
			return nil, perrors.TemplateLoadFailed(l.TemplateName(), err)
		}
		ts.layouts[l] = tpl
	}
	return ts, nil
}

// Layout returns the template for l.
func (ts *TemplateSet) Layout(l Layout) (*pongo2.Template, bool) {
	tpl, ok := ts.layouts[l]
	return tpl, ok
}

// Sitemap returns the sitemap template.
func (ts *TemplateSet) Sitemap() (*pongo2.Template, error) {
	if ts.sitemap != nil {
		return ts.sitemap, nil
	}
	tpl, err := ts.set.FromFile(SitemapTemplate)
	if err != nil {
		return nil, perrors.TemplateLoadFailed(SitemapTemplate, err)
	}
	ts.sitemap = tpl
	return tpl, nil
}

func execute(tpl *pongo2.Template, name string, ctx pongo2.Context) (string, error) {
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", perrors.TemplateRenderFailed(name, fmt.Errorf("execute: %w", err))
	}
	return out, nil
}
