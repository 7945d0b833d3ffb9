// Package ledger persists the set of page identifiers produced by the last
// full build so pages that disappear can have their output pruned.
package ledger

import (
	"encoding/json"
	"log/slog"
	"strings"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/storage"
	"git.home.luguber.info/inful/pagesmith/internal/util/sets"
)

// DefaultKey is the ledger's storage key.
const DefaultKey = "page-slugs.json"

// Ledger reads and writes the slug ledger through a storage.Store.
type Ledger struct {
	store  storage.Store
	key    string
	logger *slog.Logger
}

// New creates a Ledger stored under key.
func New(store storage.Store, key string) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	return &Ledger{store: store, key: key, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (l *Ledger) WithLogger(logger *slog.Logger) *Ledger {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load returns the identifiers recorded by the last full build. A missing,
// unreadable or corrupt ledger yields an empty set.
func (l *Ledger) Load() sets.Set[string] {
	raw, err := l.store.Get(l.key)
	if err != nil {
		if !storage.IsNotFound(err) {
			l.logger.Warn("Failed to read slug ledger", logfields.Error(err))
		}
		return sets.New[string]()
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		l.logger.Warn("Ignoring corrupt slug ledger",
			logfields.Error(perrors.CacheCorrupt(l.key, err)))
		return sets.New[string]()
	}
	return sets.New(ids...)
}

// Save replaces the ledger with ids as a sorted JSON array.
func (l *Ledger) Save(ids sets.Set[string]) error {
	data, err := json.Marshal(sets.Sorted(ids))
	if err != nil {
		return perrors.InternalError("encode slug ledger", err)
	}
	if err := l.store.Put(l.key, data); err != nil {
		return perrors.Wrap(err, perrors.CategoryCache, perrors.SeverityError, "slug ledger could not be written").
			WithContext("key", l.key)
	}
	return nil
}

// Invalidate removes the ledger so the next full build starts from nothing.
func (l *Ledger) Invalidate() error {
	if err := l.store.Delete(l.key); err != nil {
		return perrors.Wrap(err, perrors.CategoryCache, perrors.SeverityError, "slug ledger could not be removed").
			WithContext("key", l.key)
	}
	return nil
}

// Stale returns the identifiers in prev that are not in cur, sorted. The
// root index and everything under posts/ are never reported; the posts
// tree is rebuilt from scratch on every full build.
func Stale(prev, cur sets.Set[string]) []string {
	var stale []string
	for _, id := range sets.Sorted(prev.Difference(cur)) {
		if id == "index" || strings.HasPrefix(id, "posts/") {
			continue
		}
		stale = append(stale, id)
	}
	return stale
}
