// Package manifest records what the last full build consumed and produced.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/storage"
)

// DefaultKey is the manifest's storage key.
const DefaultKey = "build-manifest.json"

// BuildManifest is a complete record of a full build.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
	Inputs    Inputs    `json:"inputs"`
	Pages     []Page    `json:"pages"`
	Tags      []string  `json:"tags,omitempty"`
	Sitemap   int       `json:"sitemap_urls"`
	// ContentHash is Hash() at save time.
	ContentHash string `json:"content_hash,omitempty"`
	Status      string `json:"status"`
	Duration    int64  `json:"duration_ms"`
}

// Inputs captures the build inputs.
type Inputs struct {
	SignatureHash string `json:"signature_hash"`
	SiteHash      string `json:"site_hash"`
	Files         int    `json:"files"`
}

// Page is one rendered page.
type Page struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Output      string `json:"output"`
	Layout      string `json:"layout"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint computes the content fingerprint of a parsed page over its
// metadata (without the derived url) and rendered body.
func Fingerprint(page *content.Page) (string, error) {
	fields := make(map[string]any, len(page.Metadata))
	for k, v := range page.Metadata {
		if k == content.KeyURL || k == mdfp.FingerprintField {
			continue
		}
		fields[k] = v
	}

	serialized := ""
	if len(fields) > 0 {
		out, err := frontmatter.SerializeYAML(fields)
		if err != nil {
			return "", fmt.Errorf("serialize metadata: %w", err)
		}
		serialized = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(serialized, page.BodyHTML), nil
}

// HashSite returns a stable digest of the site configuration.
func HashSite(site map[string]any) (string, error) {
	out, err := frontmatter.SerializeYAML(site)
	if err != nil {
		return "", fmt.Errorf("serialize site config: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(out)), nil
}

// AddPage records a rendered page.
func (m *BuildManifest) AddPage(page *content.Page, output string) error {
	fp, err := Fingerprint(page)
	if err != nil {
		return err
	}
	m.Pages = append(m.Pages, Page{
		ID:          page.ID(),
		URL:         page.URL,
		Source:      page.SourcePath,
		Output:      output,
		Layout:      page.Layout(),
		Fingerprint: fp,
	})
	return nil
}

// ChangedPages returns the IDs of pages that are new or whose fingerprint
// differs from prev, sorted.
func (m *BuildManifest) ChangedPages(prev *BuildManifest) []string {
	before := make(map[string]string)
	if prev != nil {
		for _, p := range prev.Pages {
			before[p.ID] = p.Fingerprint
		}
	}
	var changed []string
	for _, p := range m.Pages {
		if fp, ok := before[p.ID]; !ok || fp != p.Fingerprint {
			changed = append(changed, p.ID)
		}
	}
	sort.Strings(changed)
	return changed
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs and page
// fingerprints. Two builds with equal hashes produced the same site.
func (m *BuildManifest) Hash() (string, error) {
	pages := append([]Page(nil), m.Pages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })

	type pageHash struct {
		ID          string `json:"id"`
		Fingerprint string `json:"fingerprint"`
	}
	hashInput := struct {
		Inputs Inputs     `json:"inputs"`
		Pages  []pageHash `json:"pages"`
		Tags   []string   `json:"tags"`
	}{Inputs: m.Inputs}
	for _, p := range pages {
		hashInput.Pages = append(hashInput.Pages, pageHash{ID: p.ID, Fingerprint: p.Fingerprint})
	}
	hashInput.Tags = append([]string(nil), m.Tags...)
	sort.Strings(hashInput.Tags)

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Load reads the manifest stored under key. A missing manifest returns nil
// without error.
func Load(store storage.Store, key string) (*BuildManifest, error) {
	data, err := store.Get(key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromJSON(data)
}

// Save writes the manifest under key.
func Save(store storage.Store, key string, m *BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	return store.Put(key, data)
}
