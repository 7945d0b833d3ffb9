package build

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/incremental"
	"git.home.luguber.info/inful/pagesmith/internal/ledger"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/render"
	"git.home.luguber.info/inful/pagesmith/internal/util/sets"
)

// site accumulates what a full build learns from its sources.
type site struct {
	pages   []*content.Page
	posts   []*content.Page
	tags    *render.TagIndex
	sitemap []string
	ids     sets.Set[string]
}

// BuildAll runs a full build: clean previous output, parse every source,
// prune stale page directories, save the ledger, then render pages, tag
// pages and the sitemap.
func (b *Builder) BuildAll(ctx context.Context) (*Report, error) {
	return b.run(ctx, ModeFull, "", func(inv *invocation) error {
		if b.bc.Renderer == nil {
			return perrors.InternalError("full build requires templates", ErrNoRender)
		}
		cfg := b.bc.Config

		if _, err := cleanOutput(cfg.OutputDir, b.protectedDirs(), inv); err != nil {
			return err
		}

		previous := b.bc.Ledger.Load()

		sources, err := discoverSources(cfg.ContentDir, cfg.PostsDir)
		if err != nil {
			return perrors.Wrap(err, perrors.CategoryFileSystem, perrors.SeverityFatal, "content directory could not be listed").
				WithContext("path", cfg.ContentDir)
		}

		s := b.collect(inv, sources)
		inv.report.SitemapURLs = len(s.sitemap)

		b.pruneStale(inv, previous, s.ids)
		if err := b.bc.Ledger.Save(s.ids); err != nil {
			inv.warn("Failed to save slug ledger", logfields.Error(err))
		}

		content.SortByDateDesc(s.posts)

		bm := &manifest.BuildManifest{
			ID:        inv.report.BuildID,
			Timestamp: inv.report.StartedAt,
			Mode:      string(ModeFull),
		}
		for _, page := range s.pages {
			b.renderPage(inv, page, s.posts, bm)
		}

		written, err := b.bc.Renderer.RenderTagPages(s.tags)
		inv.report.Tags = len(written)
		b.bc.Recorder.SetTagPages(len(written))
		if err != nil {
			inv.report.Failed++
			inv.logger.Error("Tag page rendering failed", logfields.Error(err))
		}

		if _, err := b.bc.Renderer.RenderSitemap(s.sitemap); err != nil {
			if perrors.IsFatal(err) {
				return err
			}
			inv.report.Failed++
			inv.logger.Error("Sitemap rendering failed", logfields.Error(err))
		}

		bm.Tags = s.tags.Names()
		bm.Sitemap = len(s.sitemap)
		b.saveManifest(inv, bm)
		return nil
	})
}

// collect parses every source in order, dropping drafts and unreadable
// files, and accumulates pages, posts, tags and sitemap URLs.
func (b *Builder) collect(inv *invocation, sources []string) *site {
	s := &site{
		posts: []*content.Page{},
		tags:  render.NewTagIndex(),
		ids:   sets.New[string](),
	}
	for _, path := range sources {
		page, err := b.bc.Parser.Parse(path)
		if err != nil {
			inv.logger.Error("Skipping unreadable source", logfields.SourcePath(path), logfields.Error(err))
			inv.skipped(path, metrics.PageFailed)
			continue
		}
		if page.IsDraft() {
			inv.logger.Debug("Skipping draft", logfields.SourcePath(path))
			inv.skipped(path, metrics.PageSkippedDraft)
			continue
		}

		s.ids.Add(page.ID())
		s.pages = append(s.pages, page)
		s.sitemap = append(s.sitemap, page.URL)
		if page.InPosts && render.ParseLayout(page.Layout()) == render.LayoutPost {
			s.posts = append(s.posts, page)
			s.tags.Add(page)
		}
	}
	return s
}

// pruneStale removes output directories of pages recorded by the previous
// full build whose sources no longer produce a page.
func (b *Builder) pruneStale(inv *invocation, previous, current sets.Set[string]) {
	for _, id := range ledger.Stale(previous, current) {
		dir := filepath.Join(b.bc.Config.OutputDir, filepath.FromSlash(id))
		if !strictlyWithin(b.bc.Config.OutputDir, dir) {
			inv.warn("Ignoring ledger entry outside output directory", logfields.Slug(id))
			continue
		}
		if containsProtected(dir, b.protectedDirs()) {
			inv.warn("Not removing stale page directory containing sources", logfields.Slug(id), logfields.Output(dir))
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			inv.warn("Failed to remove stale page directory", logfields.Output(dir), logfields.Error(err))
			continue
		}
		inv.logger.Info("Removed stale page directory", logfields.Slug(id), logfields.Output(dir))
		inv.pruned(id, dir)
	}
	b.bc.Recorder.AddStalePruned(inv.report.Pruned)
}

func (b *Builder) renderPage(inv *invocation, page *content.Page, posts []*content.Page, bm *manifest.BuildManifest) {
	out, err := b.bc.Renderer.RenderPage(page, posts)
	if err != nil {
		inv.logger.Error("Page rendering failed", logfields.SourcePath(page.SourcePath), logfields.Error(err))
		inv.skipped(page.SourcePath, metrics.PageFailed)
		return
	}
	if out.Skipped {
		inv.skipped(page.SourcePath, metrics.PageSkippedLayout)
		return
	}
	inv.rendered(page, out.Path)
	if bm == nil {
		return
	}
	if err := bm.AddPage(page, out.Path); err != nil {
		inv.logger.Debug("Page not recorded in build manifest", logfields.SourcePath(page.SourcePath), logfields.Error(err))
	}
}

// saveManifest stamps the inputs onto bm, compares it with the previous
// manifest and stores it. Manifest failures only warn.
func (b *Builder) saveManifest(inv *invocation, bm *manifest.BuildManifest) {
	cfg := b.bc.Config

	sig, err := incremental.ComputeInputSignature(cfg.ContentDir, cfg.TemplateDir, cfg.ConfigFile)
	if err != nil {
		inv.logger.Debug("Input signature unavailable", logfields.Error(err))
	} else {
		bm.Inputs.SignatureHash = sig.Hash
		bm.Inputs.Files = len(sig.Files)
	}
	if h, err := manifest.HashSite(b.bc.Site); err == nil {
		bm.Inputs.SiteHash = h
	}

	bm.Status = string(StatusSuccess)
	if inv.report.Failed > 0 || inv.report.LayoutSkips > 0 || inv.report.Warnings > 0 {
		bm.Status = string(StatusWarning)
	}
	bm.Duration = b.now().Sub(inv.report.StartedAt).Milliseconds()

	previous, err := manifest.Load(b.bc.Store, manifest.DefaultKey)
	if err != nil {
		inv.logger.Debug("Previous build manifest unreadable", logfields.Error(err))
	}
	if h, err := bm.Hash(); err == nil {
		bm.ContentHash = h
	}
	switch {
	case previous == nil:
	case previous.ContentHash != "" && previous.ContentHash == bm.ContentHash:
		inv.logger.Info("Site unchanged since last full build")
	default:
		inv.logger.Info("Pages changed since last full build", logfields.Count(len(bm.ChangedPages(previous))))
	}

	if err := manifest.Save(b.bc.Store, manifest.DefaultKey, bm); err != nil {
		inv.warn("Failed to write build manifest", logfields.Error(err))
	}
}

// errSourcesInOutput marks a page directory that overlaps a content,
// template or cache directory.
var errSourcesInOutput = errors.New("page directory overlaps a source directory")

// removePageDir removes the output directory for url. The root page and
// directories overlapping protectedDirs are never removed.
func (b *Builder) removePageDir(url string) (string, bool, error) {
	if url == "/" {
		return "", false, nil
	}
	dir := filepath.Join(b.bc.Config.OutputDir, filepath.FromSlash(url[1:]))
	if !strictlyWithin(b.bc.Config.OutputDir, dir) {
		return dir, false, nil
	}
	if containsProtected(dir, b.protectedDirs()) {
		return dir, false, errSourcesInOutput
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dir, false, nil
		}
		return dir, false, err
	}
	if !info.IsDir() {
		return dir, false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return dir, false, err
	}
	return dir, true, nil
}

// strictlyWithin reports whether target lies below dir and is not dir itself.
func strictlyWithin(dir, target string) bool {
	return content.IsWithin(dir, target) && filepath.Clean(dir) != filepath.Clean(target)
}
