// Package incremental provides content-hash change detection for single-file
// rebuilds and input signatures for full builds.
package incremental

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/storage"
)

// HashSuffix is appended to every cache entry key.
const HashSuffix = ".hash"

// HashCache remembers the SHA-256 of each source file as last observed.
type HashCache struct {
	store  storage.Store
	root   string
	logger *slog.Logger
}

// NewHashCache creates a cache whose keys are paths relative to root.
func NewHashCache(store storage.Store, root string) *HashCache {
	return &HashCache{
		store:  store,
		root:   root,
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *HashCache) WithLogger(logger *slog.Logger) *HashCache {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// HasChanged hashes the file and compares it with the stored entry. A missing
// or differing entry is replaced and reports true. A matching entry is left
// untouched and reports false.
func (c *HashCache) HasChanged(sourcePath string) (bool, error) {
	// #nosec G304 - source paths come from the content tree or the CLI
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return false, perrors.SourceReadFailed(sourcePath, err)
	}
	current := HashBytes(data)

	key := c.Key(sourcePath)
	previous, ok := c.lookup(key)
	if ok && previous == current {
		return false, nil
	}

	if err := c.store.Put(key, []byte(current)); err != nil {
		return true, perrors.Wrap(err, perrors.CategoryCache, perrors.SeverityError, "hash cache entry could not be written").
			WithContext("key", key)
	}
	return true, nil
}

// Forget removes the entry for sourcePath so the next observation counts
// as a change.
func (c *HashCache) Forget(sourcePath string) error {
	return c.store.Delete(c.Key(sourcePath))
}

// Clear removes every entry.
func (c *HashCache) Clear() (int, error) {
	keys, err := c.store.List(HashSuffix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := c.store.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// Key returns the reversible storage key for sourcePath.
func (c *HashCache) Key(sourcePath string) string {
	return url.PathEscape(c.normalize(sourcePath)) + HashSuffix
}

func (c *HashCache) lookup(key string) (string, bool) {
	raw, err := c.store.Get(key)
	if err != nil {
		if !storage.IsNotFound(err) {
			c.logger.Warn("Failed to read hash cache entry", slog.String("key", key), logfields.Error(err))
		}
		return "", false
	}

	value := string(bytes.TrimSpace(raw))
	if !isHexDigest(value) {
		c.logger.Warn("Ignoring corrupt hash cache entry",
			slog.String("key", key),
			logfields.Error(perrors.CacheCorrupt(key, fmt.Errorf("not a sha256 hex digest"))))
		return "", false
	}
	return value, true
}

// normalize maps sourcePath to a cleaned slash path relative to the root.
// Paths outside the root keep their absolute form.
func (c *HashCache) normalize(sourcePath string) string {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return path.Clean(filepath.ToSlash(sourcePath))
	}
	if c.root != "" {
		if rootAbs, err := filepath.Abs(c.root); err == nil {
			if rel, err := filepath.Rel(rootAbs, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return path.Clean(filepath.ToSlash(rel))
			}
		}
	}
	return path.Clean(filepath.ToSlash(abs))
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
