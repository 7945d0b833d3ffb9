// Package config resolves pagesmith's directory layout from the environment
// and loads the YAML site configuration passed to every template.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile     = "CONFIG_FILE"
	EnvTemplateDir    = "TEMPLATE_DIR"
	EnvOutputDir      = "OUTPUT_DIR"
	EnvImagesDir      = "IMAGES_DIR"
	EnvContentDir     = "CONTENT_DIR"
	EnvPostsDir       = "POSTS_DIR"
	EnvCacheDir       = "CACHE_DIR"
	EnvLedgerFile     = "PAGE_SLUG_CACHE"
	EnvImageManifest  = "IMAGE_MANIFEST"
	EnvHighlightStyle = "PAGESMITH_HIGHLIGHT_STYLE"
	EnvPygmentsTheme  = "PYGMENTIZE_THEME"
	EnvHistoryDB      = "PAGESMITH_HISTORY_DB"
	EnvMetricsFile    = "PAGESMITH_METRICS_FILE"
	EnvLogLevel       = "PAGESMITH_LOG_LEVEL"
)

// Config is the resolved set of paths and switches for one invocation.
type Config struct {
	ConfigFile     string
	TemplateDir    string
	OutputDir      string
	ImagesDir      string
	ContentDir     string
	PostsDir       string
	CacheDir       string
	LedgerFile     string
	ImageManifest  string
	HighlightStyle string
	// HistoryDB is the build history database; empty disables history.
	HistoryDB string
	// MetricsFile receives Prometheus textfile output; empty disables it.
	MetricsFile string
	LogLevel    LogLevel
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ConfigFile:     "config.yaml",
		TemplateDir:    "templates",
		OutputDir:      ".",
		ImagesDir:      "assets/images",
		ContentDir:     "content",
		PostsDir:       "content/posts",
		CacheDir:       ".cache",
		LedgerFile:     ".cache/page-slugs.json",
		ImageManifest:  ".cache/image-manifest.json",
		HighlightStyle: "native",
		HistoryDB:      ".cache/history.db",
		LogLevel:       LogLevelInfo,
	}
}

// LoadEnvFiles loads .env and .env.local when present. Variables already set
// in the process environment are never overridden. It returns the files
// that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{".env", ".env.local"}
	}
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, perrors.ConfigLoadFailed(p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, perrors.ConfigLoadFailed(p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// FromEnv overlays environment variables onto Defaults. getenv is usually
// os.Getenv; empty values keep the default except for the optional history
// and metrics paths, which are disabled by an explicitly empty value.
func FromEnv(getenv func(string) string) Config {
	return FromLookup(func(key string) (string, bool) {
		v := getenv(key)
		return v, v != ""
	})
}

// FromLookup is FromEnv over a lookup function such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) Config {
	cfg := Defaults()

	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setOptional := func(dst *string, key string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&cfg.ConfigFile, EnvConfigFile)
	set(&cfg.TemplateDir, EnvTemplateDir)
	set(&cfg.OutputDir, EnvOutputDir)
	set(&cfg.ImagesDir, EnvImagesDir)
	set(&cfg.ContentDir, EnvContentDir)
	set(&cfg.PostsDir, EnvPostsDir)
	set(&cfg.CacheDir, EnvCacheDir)
	set(&cfg.LedgerFile, EnvLedgerFile)
	set(&cfg.ImageManifest, EnvImageManifest)
	set(&cfg.HighlightStyle, EnvPygmentsTheme)
	set(&cfg.HighlightStyle, EnvHighlightStyle)
	setOptional(&cfg.HistoryDB, EnvHistoryDB)
	setOptional(&cfg.MetricsFile, EnvMetricsFile)
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = NormalizeLogLevel(v)
	}
	return cfg
}

// Validate checks that every required path is set.
func (c Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"config_file", c.ConfigFile},
		{"template_dir", c.TemplateDir},
		{"output_dir", c.OutputDir},
		{"content_dir", c.ContentDir},
		{"posts_dir", c.PostsDir},
		{"cache_dir", c.CacheDir},
		{"ledger_file", c.LedgerFile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return perrors.ValidationFailed(r.field, "must not be empty")
		}
	}
	if c.ImagesDir != "" && strings.Contains(c.ImagesDir, "://") {
		return perrors.ValidationFailed("images_dir", fmt.Sprintf("must be a path, got %q", c.ImagesDir))
	}
	return nil
}
