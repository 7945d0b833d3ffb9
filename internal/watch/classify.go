package watch

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pagesmith/internal/content"
)

// Kind is the build a filesystem event asks for.
type Kind int

const (
	KindNone Kind = iota
	KindFile
	KindFull
)

// Job is a build request derived from a filesystem event.
type Job struct {
	Kind Kind
	Path string
}

// Dirs are the inputs the watcher reacts to.
type Dirs struct {
	Content    string
	Templates  string
	ConfigFile string
}

// Classify maps a filesystem event to a build job:
//
//   - a write to a .md file under the content directory rebuilds that file;
//   - a create, remove or rename under the content directory needs a full
//     build so posts, tags, sitemap and the ledger stay consistent;
//   - any change to the templates or the site config needs a full build.
//
// Hidden, editor temp and chmod-only events are ignored.
func Classify(ev fsnotify.Event, dirs Dirs) Job {
	if shouldIgnoreEvent(ev.Name) || ev.Op == fsnotify.Chmod {
		return Job{}
	}

	if dirs.ConfigFile != "" && samePath(ev.Name, dirs.ConfigFile) {
		return Job{Kind: KindFull}
	}
	if dirs.Templates != "" && content.IsWithin(dirs.Templates, ev.Name) {
		return Job{Kind: KindFull}
	}
	if dirs.Content == "" || !content.IsWithin(dirs.Content, ev.Name) {
		return Job{}
	}

	if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
		return Job{Kind: KindFull}
	}
	if ev.Op.Has(fsnotify.Write) && strings.HasSuffix(ev.Name, ".md") {
		return Job{Kind: KindFile, Path: ev.Name}
	}
	return Job{}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}
