package build

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// BuildFile rebuilds a single source file.
//
// A missing file is treated as a deletion: its page directory is removed
// (never the root index) and the slug ledger is invalidated. An unchanged
// file is skipped. Otherwise only this page is parsed and rendered; tag
// pages and the sitemap are left for the next full build.
func (b *Builder) BuildFile(ctx context.Context, path string) (*Report, error) {
	return b.run(ctx, ModeFile, path, func(inv *invocation) error {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				b.removeDeleted(inv, path)
				return nil
			}
			inv.logger.Error("Skipping unreadable source", logfields.SourcePath(path), logfields.Error(err))
			inv.skipped(path, metrics.PageFailed)
			return nil
		}
		if b.bc.Renderer == nil {
			return perrors.InternalError("single file build requires templates", ErrNoRender)
		}

		inv.logger.Info("Change detected, rebuilding", logfields.SourcePath(path))
		changed, err := b.bc.Cache.HasChanged(path)
		if err != nil {
			inv.warn("Change detection failed, rebuilding", logfields.SourcePath(path), logfields.Error(err))
			changed = true
		}
		if !changed {
			inv.logger.Info("No changes detected, skipping rebuild", logfields.SourcePath(path))
			inv.skipped(path, metrics.PageSkippedUnchanged)
			return nil
		}

		page, err := b.bc.Parser.Parse(path)
		if err != nil {
			inv.logger.Error("Skipping unreadable source", logfields.SourcePath(path), logfields.Error(err))
			inv.skipped(path, metrics.PageFailed)
			b.forget(inv, path)
			return nil
		}
		if page.IsDraft() {
			inv.logger.Info("Skipping draft", logfields.SourcePath(path))
			inv.skipped(path, metrics.PageSkippedDraft)
			return nil
		}

		before := inv.report.Rendered
		b.renderPage(inv, page, nil, nil)
		if inv.report.Rendered == before {
			// Retry on the next change event instead of reporting unchanged.
			b.forget(inv, path)
		}
		return nil
	})
}

// removeDeleted handles a source file that no longer exists.
func (b *Builder) removeDeleted(inv *invocation, path string) {
	inPosts := content.IsWithin(b.bc.Config.PostsDir, path)
	slug, url := content.DeriveURL(path, inPosts)
	inv.logger.Info("Source removed", logfields.SourcePath(path), logfields.Slug(slug))

	dir, removed, err := b.removePageDir(url)
	switch {
	case errors.Is(err, errSourcesInOutput):
		inv.warn("Not removing page output containing sources", logfields.Output(dir))
	case err != nil:
		inv.warn("Failed to remove page output", logfields.Output(dir), logfields.Error(err))
	case removed:
		inv.logger.Info("Removed deleted page output", logfields.Output(dir))
		id := slug
		if inPosts {
			id = content.PostsPrefix + slug
		}
		inv.pruned(id, dir)
	}

	b.forget(inv, path)
	if err := b.bc.Ledger.Invalidate(); err != nil {
		inv.warn("Failed to invalidate slug ledger", logfields.Error(err))
	}
}

func (b *Builder) forget(inv *invocation, path string) {
	if err := b.bc.Cache.Forget(path); err != nil {
		inv.logger.Debug("Failed to forget hash cache entry", logfields.SourcePath(path), logfields.Error(err))
	}
}
