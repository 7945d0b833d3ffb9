// Package storage provides the key/value stores that hold pagesmith's
// persisted build state (content hashes, the slug ledger, the build manifest).
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Store is a flat key/value store. Keys are slash-free relative names.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put creates or replaces the value for key.
	Put(key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// List returns all keys with the given suffix, sorted.
	List(suffix string) ([]string, error)
}

// ErrNotFound is returned when a key doesn't exist.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	return "key not found: " + e.Key
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// ErrInvalidKey is returned for keys that could address files outside the store.
var ErrInvalidKey = errors.New("invalid storage key")

func validateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case path.IsAbs(key):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
