// Package images resolves Markdown image references against a precomputed
// manifest of responsive variants and rewrites them into <picture> markup.
package images

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// Known variant formats.
const (
	FormatAVIF = "avif"
	FormatWebP = "webp"
	FormatJPG  = "jpg"
)

// Variant is one pre-generated encoding of an original image at a width.
type Variant struct {
	Format string `json:"-"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
}

// Manifest maps an original filename to its variants grouped by format.
// Every variant list is sorted by width ascending.
type Manifest map[string]map[string][]Variant

// Load reads a manifest file. A missing file yields an empty manifest and no
// error. A file that cannot be decoded yields an empty manifest and an error
// so callers can warn and continue.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("read image manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest JSON of the form
// {"file.jpg": {"webp": [{"width": 400, "path": "..."}]}}.
func Parse(data []byte) (Manifest, error) {
	var raw map[string]map[string][]Variant
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("decode image manifest: %w", err)
	}

	m := make(Manifest, len(raw))
	for file, formats := range raw {
		byFormat := make(map[string][]Variant, len(formats))
		for format, variants := range formats {
			if len(variants) == 0 {
				continue
			}
			list := make([]Variant, len(variants))
			for i, v := range variants {
				v.Format = format
				list[i] = v
			}
			sort.SliceStable(list, func(i, j int) bool { return list[i].Width < list[j].Width })
			byFormat[format] = list
		}
		if len(byFormat) > 0 {
			m[file] = byFormat
		}
	}
	return m, nil
}

// Lookup returns the variants known for an original filename.
func (m Manifest) Lookup(filename string) (map[string][]Variant, bool) {
	formats, ok := m[filename]
	return formats, ok && len(formats) > 0
}
