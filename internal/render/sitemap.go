package render

import (
	"path/filepath"

	"github.com/flosch/pongo2/v6"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// SitemapFile is the sitemap's name in the output root.
const SitemapFile = "sitemap.xml"

// RenderSitemap renders the sitemap template with the page URLs in the
// order given and writes it to the output root.
func (r *Renderer) RenderSitemap(urls []string) (string, error) {
	tpl, err := r.templates.Sitemap()
	if err != nil {
		return "", err
	}
	if urls == nil {
		urls = []string{}
	}

	xml, err := execute(tpl, SitemapTemplate, pongo2.Context{
		"site":  r.site,
		"pages": urls,
	})
	if err != nil {
		return "", err
	}

	dest := filepath.Join(r.outputDir, SitemapFile)
	if err := writeFile(dest, xml); err != nil {
		return "", err
	}
	r.logger.Info("Generated sitemap", logfields.Output(dest), logfields.Count(len(urls)))
	return dest, nil
}
