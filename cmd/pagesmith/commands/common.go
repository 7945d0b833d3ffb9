package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Global carries state shared by every subcommand.
type Global struct {
	Context context.Context
	Logger  *slog.Logger
	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags. Path flags override the environment.
type CLI struct {
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	ShowVersion kong.VersionFlag `name:"version" help:"Show version and exit"`
	EnvFiles    []string         `name:"env-file" help:"Environment files to load (default .env, .env.local)" type:"path"`

	Config        string `short:"c" help:"Site configuration file (CONFIG_FILE)"`
	Output        string `short:"o" help:"Output directory (OUTPUT_DIR)"`
	Content       string `help:"Content directory (CONTENT_DIR)"`
	Posts         string `help:"Posts directory (POSTS_DIR)"`
	Templates     string `help:"Template directory (TEMPLATE_DIR)"`
	Images        string `help:"Images directory prefix (IMAGES_DIR)"`
	Cache         string `help:"Cache directory (CACHE_DIR)"`
	ImageManifest string `name:"image-manifest" help:"Responsive image manifest (IMAGE_MANIFEST)"`
	HistoryDB     string `name:"history-db" help:"Build history database (PAGESMITH_HISTORY_DB)"`
	MetricsFile   string `name:"metrics-file" help:"Write Prometheus textfile metrics here (PAGESMITH_METRICS_FILE)"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Build the site, or rebuild a single file with --file"`
	Clean   CleanCmd   `cmd:"" help:"Delete generated output and reset the slug ledger"`
	Watch   WatchCmd   `cmd:"" help:"Build, then rebuild whenever content or templates change"`
	History HistoryCmd `cmd:"" help:"Show recent builds from the history database"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing: load env files, then set up logging once.
func (c *CLI) AfterApply(g *Global) error {
	if _, err := config.LoadEnvFiles(c.EnvFiles...); err != nil {
		return err
	}

	level := config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel)).SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	if g.Context == nil {
		g.Context = context.Background()
	}
	return nil
}

// ResolveConfig overlays the environment on the defaults and the flags on
// the environment, then validates the result.
func (c *CLI) ResolveConfig() (config.Config, error) {
	cfg := config.FromLookup(os.LookupEnv)

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.ConfigFile, c.Config)
	override(&cfg.OutputDir, c.Output)
	override(&cfg.ContentDir, c.Content)
	override(&cfg.PostsDir, c.Posts)
	override(&cfg.TemplateDir, c.Templates)
	override(&cfg.ImagesDir, c.Images)
	if c.Cache != "" {
		rebaseCacheFiles(&cfg, c.Cache)
	}
	override(&cfg.ImageManifest, c.ImageManifest)
	override(&cfg.HistoryDB, c.HistoryDB)
	override(&cfg.MetricsFile, c.MetricsFile)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rebaseCacheFiles moves the cache directory and every cache file still at
// its default location along with it.
func rebaseCacheFiles(cfg *config.Config, cacheDir string) {
	defaults := config.Defaults()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&cfg.LedgerFile, defaults.LedgerFile},
		{&cfg.ImageManifest, defaults.ImageManifest},
		{&cfg.HistoryDB, defaults.HistoryDB},
	} {
		if *f.dst == f.def {
			*f.dst = filepath.Join(cacheDir, filepath.Base(f.def))
		}
	}
	cfg.CacheDir = cacheDir
}

// newRecorder returns a Prometheus recorder when a metrics file is
// configured and a no-op recorder otherwise. flush writes the textfile.
func newRecorder(cfg config.Config, logger *slog.Logger) (rec metrics.Recorder, flush func()) {
	if cfg.MetricsFile == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	pr := metrics.NewPrometheusRecorder(prom.NewRegistry())
	return pr, func() {
		if err := metrics.WriteTextfile(cfg.MetricsFile, pr.Registry()); err != nil {
			logger.Warn("Failed to write metrics textfile", slog.String("path", cfg.MetricsFile), logfields.Error(err))
		}
	}
}
