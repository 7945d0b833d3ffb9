package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// discoverSources lists the top-level .md files of the content directory
// followed by those of the posts directory, each sorted by name. A missing
// posts directory is not an error; a missing content directory is.
func discoverSources(contentDir, postsDir string) ([]string, error) {
	top, err := listMarkdown(contentDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	if filepath.Clean(postsDir) == filepath.Clean(contentDir) {
		return top, nil
	}
	posts, err := listMarkdown(postsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return top, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	return append(top, posts...), nil
}

func listMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}
