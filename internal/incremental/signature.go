package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// InputSignature is a deterministic digest over a set of build inputs.
type InputSignature struct {
	Files map[string]string `json:"files"`
	Hash  string            `json:"hash"`
}

// ComputeInputSignature hashes every regular file under the given roots.
// Missing roots are skipped. Paths in Files are slash-separated and relative
// to the working directory as given.
func ComputeInputSignature(roots ...string) (*InputSignature, error) {
	sig := &InputSignature{Files: make(map[string]string)}

	for _, root := range roots {
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			// #nosec G304 - walking configured input directories
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			sig.Files[filepath.ToSlash(p)] = HashBytes(data)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("hash inputs under %s: %w", root, err)
		}
	}

	sig.Hash = sig.digest()
	return sig, nil
}

func (s *InputSignature) digest() string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		_, _ = fmt.Fprintf(h, "%s\x00%s\n", p, s.Files[p])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Changed returns the sorted paths that were added, removed or modified
// between prev and s.
func (s *InputSignature) Changed(prev *InputSignature) []string {
	var changed []string
	if prev == nil {
		for p := range s.Files {
			changed = append(changed, p)
		}
		sort.Strings(changed)
		return changed
	}
	for p, h := range s.Files {
		if prev.Files[p] != h {
			changed = append(changed, p)
		}
	}
	for p := range prev.Files {
		if _, ok := s.Files[p]; !ok {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed
}
