package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := FromLookup(envMap(nil))
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "content/posts", cfg.PostsDir)
	assert.Equal(t, ".cache/page-slugs.json", cfg.LedgerFile)
	require.NoError(t, cfg.Validate())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg := FromLookup(envMap(map[string]string{
		EnvOutputDir:      "public",
		EnvContentDir:     "site",
		EnvPostsDir:       "site/blog",
		EnvLedgerFile:     "state/slugs.json",
		EnvPygmentsTheme:  "monokai",
		EnvHistoryDB:      "",
		EnvMetricsFile:    "metrics/pagesmith.prom",
		EnvLogLevel:       "DEBUG",
		EnvTemplateDir:    "   ",
		EnvHighlightStyle: "",
		EnvImagesDir:      "static/img",
		EnvImageManifest:  "state/images.json",
		EnvCacheDir:       "state",
		EnvConfigFile:     "site.yaml",
	}))

	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, "site", cfg.ContentDir)
	assert.Equal(t, "site/blog", cfg.PostsDir)
	assert.Equal(t, "state/slugs.json", cfg.LedgerFile)
	assert.Equal(t, "monokai", cfg.HighlightStyle)
	assert.Empty(t, cfg.HistoryDB)
	assert.Equal(t, "metrics/pagesmith.prom", cfg.MetricsFile)
	assert.Equal(t, LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "templates", cfg.TemplateDir)
	assert.Equal(t, "static/img", cfg.ImagesDir)
	assert.Equal(t, "state/images.json", cfg.ImageManifest)
	assert.Equal(t, "state", cfg.CacheDir)
	assert.Equal(t, "site.yaml", cfg.ConfigFile)
}

func TestFromEnv_UsesGetenv(t *testing.T) {
	t.Setenv(EnvOutputDir, "dist")
	cfg := FromEnv(os.Getenv)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, Defaults().HistoryDB, cfg.HistoryDB)
}

func TestValidate_EmptyRequired(t *testing.T) {
	cfg := Defaults()
	cfg.ContentDir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryValidation))

	cfg = Defaults()
	cfg.ImagesDir = "https://cdn/x"
	require.Error(t, cfg.Validate())
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PAGESMITH_TEST_A=from-file\nPAGESMITH_TEST_B=file-b\n"), 0o600))

	t.Setenv("PAGESMITH_TEST_A", "from-process")
	t.Setenv("PAGESMITH_TEST_B", "")
	require.NoError(t, os.Unsetenv("PAGESMITH_TEST_B"))

	loaded, err := LoadEnvFiles(envFile, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, []string{envFile}, loaded)
	assert.Equal(t, "from-process", os.Getenv("PAGESMITH_TEST_A"))
	assert.Equal(t, "file-b", os.Getenv("PAGESMITH_TEST_B"))
}

func TestLoadSite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	t.Setenv("PAGESMITH_TEST_URL", "https://example.com")
	require.NoError(t, os.WriteFile(p, []byte("title: Blog\nbase_url: ${PAGESMITH_TEST_URL}\nnav:\n  - home\n"), 0o600))

	site, err := LoadSite(p)
	require.NoError(t, err)
	assert.Equal(t, "Blog", site.String("title"))
	assert.Equal(t, "https://example.com", site["base_url"])
	assert.Equal(t, []any{"home"}, site["nav"])
	assert.Empty(t, site.String("nav"))
}

func TestLoadSite_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSite(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, perrors.IsFatal(err))
	assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("title: [oops\n"), 0o600))
	_, err = LoadSite(bad)
	require.Error(t, err)
	assert.True(t, perrors.IsCategory(err, perrors.CategoryConfig))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	site, err := LoadSite(empty)
	require.NoError(t, err)
	assert.NotNil(t, site)
}

func TestLogLevels(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("Warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, slog.LevelDebug, LogLevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelError, LogLevelError.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel("").SlogLevel())
}
