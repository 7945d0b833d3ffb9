// Package watch rebuilds the site while its sources change. Filesystem
// events are classified, debounced and executed by a single worker, so
// builds never overlap.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// Session runs builds against one loaded build context.
type Session interface {
	BuildAll(ctx context.Context) (*build.Report, error)
	BuildFile(ctx context.Context, path string) (*build.Report, error)
	Clean(ctx context.Context) (*build.Report, error)
	Close() error
}

// Factory opens a session. It is called before the first build and again
// for every full build so template and site config edits take effect.
type Factory func() (Session, error)

// Options configures a Watcher.
type Options struct {
	Dirs Dirs
	// Debounce is the quiet window; zero means DefaultDebounce.
	Debounce time.Duration
	// ReconcileEvery schedules a periodic full build; zero disables it.
	ReconcileEvery time.Duration
	// CleanOnExit removes generated output when the watcher stops.
	CleanOnExit bool
	Logger      *slog.Logger
}

// Watcher drives builds from filesystem events.
type Watcher struct {
	factory Factory
	opts    Options
	logger  *slog.Logger
	queue   *debouncer

	mu      sync.Mutex
	session Session
	ready   chan struct{}
}

// New creates a Watcher.
func New(factory Factory, opts Options) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		factory: factory,
		opts:    opts,
		logger:  logger,
		queue:   newDebouncer(opts.Debounce),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the initial build finished and the watches are in
// place.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run performs an initial full build, then rebuilds on changes until ctx is
// done. The initial build's fatal errors are returned; later build errors
// are logged and the watcher keeps going. The session is closed whenever
// Run returns.
func (w *Watcher) Run(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			w.swap(nil)
		}
	}()

	if err := w.runFull(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range []string{w.opts.Dirs.Content, w.opts.Dirs.Templates} {
		if err := addDirsRecursive(fw, dir, w.logger); err != nil {
			return err
		}
	}
	if cfgFile := w.opts.Dirs.ConfigFile; cfgFile != "" {
		if err := fw.Add(filepath.Dir(cfgFile)); err != nil {
			w.logger.Warn("Watch add failed", slog.String("dir", filepath.Dir(cfgFile)), logfields.Error(err))
		}
	}

	scheduler, err := w.startReconciler()
	if err != nil {
		return err
	}

	workerDone := make(chan struct{})
	workerCtx, stopWorker := context.WithCancel(ctx)
	go func() {
		defer close(workerDone)
		w.work(workerCtx)
	}()

	close(w.ready)
	w.logger.Info("Watching for changes",
		slog.String("content", w.opts.Dirs.Content),
		slog.String("templates", w.opts.Dirs.Templates))

	loopErr := w.loop(ctx, fw)

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			w.logger.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	w.queue.stop()
	stopWorker()
	<-workerDone

	w.shutdown()
	return loopErr
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) && !shouldIgnoreEvent(ev.Name) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() && w.isWatchedTree(ev.Name) {
			_ = addDirsRecursive(fw, ev.Name, w.logger)
		}
	}

	job := Classify(ev, w.opts.Dirs)
	if job.Kind == KindNone {
		return
	}
	w.logger.Debug("File change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
	w.queue.add(job)
}

// isWatchedTree reports whether dir belongs to a recursively watched root.
// The config file's directory is watched without recursion.
func (w *Watcher) isWatchedTree(dir string) bool {
	return content.IsWithin(w.opts.Dirs.Content, dir) || content.IsWithin(w.opts.Dirs.Templates, dir)
}

// work is the single build worker.
func (w *Watcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue.ready:
			b := w.queue.take()
			if b.empty() {
				continue
			}
			w.runBatch(ctx, b)
		}
	}
}

func (w *Watcher) runBatch(ctx context.Context, b batch) {
	if b.full {
		if err := w.runFull(ctx); err != nil {
			w.logger.Error("Full rebuild failed", logfields.Error(err))
		}
		return
	}

	s := w.current()
	if s == nil {
		return
	}
	for _, path := range b.paths() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.BuildFile(ctx, path); err != nil {
			w.logger.Error("Rebuild failed", logfields.SourcePath(path), logfields.Error(err))
		}
	}
}

// runFull opens a fresh session, replacing the current one, and runs a full
// build with it.
func (w *Watcher) runFull(ctx context.Context) error {
	s, err := w.factory()
	if err != nil {
		return err
	}
	w.swap(s)
	_, err = s.BuildAll(ctx)
	return err
}

func (w *Watcher) swap(s Session) {
	w.mu.Lock()
	old := w.session
	w.session = s
	w.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			w.logger.Debug("Closing previous session failed", logfields.Error(err))
		}
	}
}

func (w *Watcher) current() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// startReconciler schedules the periodic full build. Reconciling closes the
// gap single-file builds leave in tag pages, the sitemap and blog listings.
func (w *Watcher) startReconciler() (gocron.Scheduler, error) {
	if w.opts.ReconcileEvery <= 0 {
		return nil, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.ReconcileEvery),
		gocron.NewTask(func() {
			w.logger.Info("Scheduling reconciling full build")
			w.queue.now(Job{Kind: KindFull})
		}),
		gocron.WithName("reconcile-full-build"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create reconcile job: %w", err)
	}
	s.Start()
	return s, nil
}

// shutdown optionally cleans generated output and closes the session.
func (w *Watcher) shutdown() {
	s := w.current()
	if s == nil {
		return
	}
	if w.opts.CleanOnExit {
		w.logger.Info("Cleaning generated files on exit")
		if _, err := s.Clean(context.Background()); err != nil {
			w.logger.Warn("Clean on exit failed", logfields.Error(err))
		}
	}
	w.swap(nil)
}

func addDirsRecursive(fw *fsnotify.Watcher, root string, logger *slog.Logger) error {
	if root == "" {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				logger.Warn("Watch add failed", slog.String("dir", path), logfields.Error(err))
			}
		}
		return nil
	})
}
