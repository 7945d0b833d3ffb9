package build

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/render"
)

// postsOutputDir is the output subtree holding rendered posts.
const postsOutputDir = "posts"

// Clean deletes generated output, invalidates the slug ledger and clears the
// change detection cache and build manifest.
func (b *Builder) Clean(ctx context.Context) (*Report, error) {
	return b.run(ctx, ModeClean, "", func(inv *invocation) error {
		n, err := cleanOutput(b.bc.Config.OutputDir, b.protectedDirs(), inv)
		inv.report.Cleaned = n
		if err != nil {
			return err
		}

		if err := b.bc.Ledger.Invalidate(); err != nil {
			inv.warn("Failed to invalidate slug ledger", logfields.Error(err))
		}
		if cleared, err := b.bc.Cache.Clear(); err != nil {
			inv.warn("Failed to clear hash cache", logfields.Error(err))
		} else if cleared > 0 {
			inv.logger.Debug("Cleared hash cache", logfields.Count(cleared))
		}
		if err := b.bc.Store.Delete(manifest.DefaultKey); err != nil {
			inv.warn("Failed to remove build manifest", logfields.Error(err))
		}

		inv.logger.Info("Generated files are deleted", logfields.Count(n))
		return nil
	})
}

// protectedDirs are never descended into or removed by a clean.
func (b *Builder) protectedDirs() []string {
	cfg := b.bc.Config
	return []string{cfg.CacheDir, cfg.ContentDir, cfg.TemplateDir}
}

// cleanOutput removes every index.html and *.xml below root, skipping
// protected and dot directories, then removes the posts and tags subtrees.
// It returns the number of files and trees removed.
func cleanOutput(root string, protected []string, inv *invocation) (int, error) {
	removed := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if p != root && (strings.HasPrefix(d.Name(), ".") || isProtected(p, protected)) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "index.html" && filepath.Ext(d.Name()) != ".xml" {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		inv.logger.Debug("Deleted", logfields.Output(p))
		return nil
	})
	if err != nil {
		return removed, perrors.Wrap(err, perrors.CategoryFileSystem, perrors.SeverityError, "output could not be cleaned").
			WithContext("path", root)
	}

	for _, sub := range []string{postsOutputDir, render.TagsDir} {
		dir := filepath.Join(root, sub)
		if containsProtected(dir, protected) {
			inv.logger.Warn("Not removing output subtree containing sources", logfields.Output(dir))
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, perrors.OutputWriteFailed(dir, err)
		}
		removed++
		inv.logger.Debug("Deleted directory", logfields.Output(dir))
	}
	return removed, nil
}

func isProtected(dir string, protected []string) bool {
	for _, p := range protected {
		if p != "" && content.IsWithin(p, dir) {
			return true
		}
	}
	return false
}

// containsProtected reports whether removing dir would remove any protected
// directory.
func containsProtected(dir string, protected []string) bool {
	for _, p := range protected {
		if p != "" && (content.IsWithin(dir, p) || content.IsWithin(p, dir)) {
			return true
		}
	}
	return false
}
