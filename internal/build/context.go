package build

import (
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/eventstore"
	"git.home.luguber.info/inful/pagesmith/internal/images"
	"git.home.luguber.info/inful/pagesmith/internal/incremental"
	"git.home.luguber.info/inful/pagesmith/internal/ledger"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/render"
	"git.home.luguber.info/inful/pagesmith/internal/storage"
)

// Context holds everything one invocation needs. It is created once and
// passed to a Builder; nothing in it is package-level state.
type Context struct {
	Config config.Config
	Site   config.Site

	// Templates and Renderer are nil for contexts created with
	// NewMaintenanceContext.
	Templates *render.TemplateSet
	Renderer  *render.Renderer
	Images    images.Manifest
	Parser    *content.Parser

	// Store is the key/value store under the cache directory.
	Store  storage.Store
	Cache  *incremental.HashCache
	Ledger *ledger.Ledger

	Logger   *slog.Logger
	Recorder metrics.Recorder
	History  eventstore.Store
}

// Option customizes a Context.
type Option func(*Context)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Context) {
		if r != nil {
			c.Recorder = r
		}
	}
}

// WithHistory sets the build history store instead of opening the one
// named by the configuration.
func WithHistory(s eventstore.Store) Option {
	return func(c *Context) {
		if s != nil {
			c.History = s
		}
	}
}

// SiteImageSizes is the site config key overriding the <img> sizes
// attribute of rewritten images.
const SiteImageSizes = "image_sizes"

// NewContext loads site config, templates and the image manifest and wires
// every component. Site config and template errors are fatal.
func NewContext(cfg config.Config, opts ...Option) (*Context, error) {
	c, err := NewMaintenanceContext(cfg, opts...)
	if err != nil {
		return nil, err
	}

	site, err := config.LoadSite(cfg.ConfigFile)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Site = site

	templates, err := render.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Templates = templates

	manifest, err := images.Load(cfg.ImageManifest)
	if err != nil {
		c.Logger.Warn("Image manifest unreadable, images will not be rewritten",
			slog.String("path", cfg.ImageManifest),
			logfields.Error(err))
	}
	c.Images = manifest

	rewriterOpts := []images.RewriterOption{images.WithLogger(c.Logger)}
	if sizes := site.String(SiteImageSizes); sizes != "" {
		rewriterOpts = append(rewriterOpts, images.WithSizes(sizes))
	}
	rewriter := images.NewRewriter(manifest, cfg.ImagesDir, rewriterOpts...)
	c.Parser = content.NewParser(cfg.PostsDir,
		content.WithLogger(c.Logger),
		content.WithImageRewriter(rewriter),
		content.WithConverter(markdown.NewConverter(markdown.WithHighlightStyle(cfg.HighlightStyle))))
	c.Renderer = render.NewRenderer(templates, site, cfg.OutputDir).WithLogger(c.Logger)
	return c, nil
}

// NewMaintenanceContext wires only the persistent state (cache, ledger,
// history). It is enough for Clean and never touches templates or site
// config.
func NewMaintenanceContext(cfg config.Config, opts ...Option) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Context{
		Config:   cfg,
		Logger:   slog.Default(),
		Recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Store = storage.NewFSStore(cfg.CacheDir)
	c.Cache = incremental.NewHashCache(c.Store, ".").WithLogger(c.Logger)

	ledgerStore := c.Store
	if dir := filepath.Dir(cfg.LedgerFile); filepath.Clean(dir) != filepath.Clean(cfg.CacheDir) {
		ledgerStore = storage.NewFSStore(dir)
	}
	c.Ledger = ledger.New(ledgerStore, filepath.Base(cfg.LedgerFile)).WithLogger(c.Logger)

	if c.History == nil {
		c.History = openHistory(cfg.HistoryDB, c.Logger)
	}
	return c, nil
}

// openHistory opens the SQLite history database. History is best effort:
// an empty path or an unopenable database yields a NopStore.
func openHistory(path string, logger *slog.Logger) eventstore.Store {
	if path == "" {
		return eventstore.NopStore{}
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("Build history disabled", slog.String("path", path), logfields.Error(err))
		return eventstore.NopStore{}
	}
	return store
}

// Close releases the history store.
func (c *Context) Close() error {
	if c.History == nil {
		return nil
	}
	return c.History.Close()
}
